package intensity

import (
	"bytes"
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

// float64ByteSize is the number of bytes in a float64.
const float64ByteSize = 8

// CompressFloat64Slice compresses a slice of float64-s with LZ4. Returns nil
// when the data does not compress, which LZ4 block compression reports for
// tiny or high-entropy inputs.
func CompressFloat64Slice(data []float64) []byte {
	buf := new(bytes.Buffer)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(buf.Len()))

	written, err := lz4.CompressBlock(buf.Bytes(), compressed, nil)
	if err != nil || written == 0 {
		return nil
	}

	return compressed[:written]
}

// DecompressFloat64Slice decompresses a slice of float64-s previously
// compressed with LZ4. `result` must be preallocated.
func DecompressFloat64Slice(data []byte, result []float64) {
	decompressed := make([]byte, len(result)*float64ByteSize)

	_, err := lz4.UncompressBlock(data, decompressed)
	if err != nil {
		return
	}

	readErr := binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result)
	if readErr != nil {
		return
	}
}

// float64ColumnBytes renders a column as raw little-endian bytes. The raw
// form backs up LZ4 when a column is incompressible.
func float64ColumnBytes(data []float64) []byte {
	buf := new(bytes.Buffer)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil
	}

	return buf.Bytes()
}

// packFloat64Column compresses a column, falling back to the raw
// little-endian encoding when LZ4 cannot shrink it.
func packFloat64Column(data []float64) (packed []byte, raw bool) {
	packed = CompressFloat64Slice(data)
	if packed != nil {
		return packed, false
	}

	return float64ColumnBytes(data), true
}

// unpackFloat64Column restores a packed column into result, which must be
// preallocated to the original length.
func unpackFloat64Column(packed []byte, raw bool, result []float64) {
	if raw {
		_ = binary.Read(bytes.NewReader(packed), binary.LittleEndian, result)

		return
	}

	DecompressFloat64Slice(packed, result)
}
