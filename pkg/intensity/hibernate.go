package intensity

import (
	"errors"
	"fmt"
	"io"
	"sync"

	gitbinary "github.com/go-git/go-git/v6/utils/binary"

	"github.com/manan/range-list/pkg/avltree"
)

// Hibernation lifecycle errors.
var (
	ErrAlreadyHibernated = errors.New("segments are already hibernated")
	ErrNotHibernated     = errors.New("segments are not hibernated")
)

// hibernatedColumns holds the packed breakpoint columns while the tree is
// released. A raw flag marks a column kept in its little-endian form
// because LZ4 could not shrink it.
type hibernatedColumns struct {
	count          int
	positions      []byte
	intensities    []byte
	rawPositions   bool
	rawIntensities bool
}

// Hibernate compresses the accumulator: the tree is flattened into two
// parallel float64 columns, the columns are packed concurrently, and the
// tree memory is released. Boot restores the accumulator; every other
// operation panics until then.
func (s *Segments) Hibernate() error {
	if s.hib != nil {
		return ErrAlreadyHibernated
	}

	points := s.snapshot()
	positions := make([]float64, len(points))
	intensities := make([]float64, len(points))

	for i, bp := range points {
		positions[i] = bp.Position
		intensities[i] = bp.Intensity
	}

	hib := &hibernatedColumns{count: len(points)}

	wg := &sync.WaitGroup{}
	wg.Add(2)

	go func() {
		hib.positions, hib.rawPositions = packFloat64Column(positions)

		wg.Done()
	}()

	go func() {
		hib.intensities, hib.rawIntensities = packFloat64Column(intensities)

		wg.Done()
	}()

	wg.Wait()

	s.hib = hib
	s.tree = nil
	s.index = nil

	return nil
}

// Boot performs the opposite of Hibernate() - unpacks the columns and
// rebuilds the tree. Booting an accumulator that is not hibernated is a
// no-op.
func (s *Segments) Boot() error {
	if s.hib == nil {
		return nil
	}

	if s.hib.count > 0 && s.hib.positions == nil {
		panic("cannot boot serialized segments")
	}

	positions := make([]float64, s.hib.count)
	intensities := make([]float64, s.hib.count)

	if s.hib.count > 0 {
		wg := &sync.WaitGroup{}
		wg.Add(2)

		go func() {
			unpackFloat64Column(s.hib.positions, s.hib.rawPositions, positions)

			wg.Done()
		}()

		go func() {
			unpackFloat64Column(s.hib.intensities, s.hib.rawIntensities, intensities)

			wg.Done()
		}()

		wg.Wait()
	}

	s.tree = avltree.NewFromSorted(positions, intensities)
	s.index = newRangeIndex()
	s.hib = nil

	return nil
}

// Serialize writes the hibernated columns to w with variable-width integer
// framing. The columns are released as they are written: a serialized
// accumulator must be restored through Deserialize, not Boot.
func (s *Segments) Serialize(w io.Writer) error {
	if s.hib == nil {
		return ErrNotHibernated
	}

	err := gitbinary.WriteVariableWidthInt(w, int64(s.hib.count))
	if err != nil {
		return fmt.Errorf("write breakpoint count: %w", err)
	}

	columns := []struct {
		data []byte
		raw  bool
	}{
		{s.hib.positions, s.hib.rawPositions},
		{s.hib.intensities, s.hib.rawIntensities},
	}

	for idx, column := range columns {
		err = gitbinary.WriteVariableWidthInt(w, rawFlagValue(column.raw))
		if err != nil {
			return fmt.Errorf("write raw flag %d: %w", idx, err)
		}

		err = gitbinary.WriteVariableWidthInt(w, int64(len(column.data)))
		if err != nil {
			return fmt.Errorf("write column len %d: %w", idx, err)
		}

		_, err = w.Write(column.data)
		if err != nil {
			return fmt.Errorf("write column %d: %w", idx, err)
		}
	}

	s.hib.positions = nil
	s.hib.intensities = nil

	return nil
}

// Deserialize reads a serialized snapshot from r into the hibernated state,
// discarding whatever live breakpoints the accumulator held. Call Boot
// afterwards to rebuild the tree.
func (s *Segments) Deserialize(r io.Reader) error {
	if s.hib != nil {
		return ErrAlreadyHibernated
	}

	count, err := gitbinary.ReadVariableWidthInt(r)
	if err != nil {
		return fmt.Errorf("read breakpoint count: %w", err)
	}

	hib := &hibernatedColumns{count: int(count)}

	for idx, column := range []*[]byte{&hib.positions, &hib.intensities} {
		rawFlag, readErr := gitbinary.ReadVariableWidthInt(r)
		if readErr != nil {
			return fmt.Errorf("read raw flag %d: %w", idx, readErr)
		}

		columnLen, readErr := gitbinary.ReadVariableWidthInt(r)
		if readErr != nil {
			return fmt.Errorf("read column len %d: %w", idx, readErr)
		}

		buf := make([]byte, int(columnLen))

		_, readErr = io.ReadFull(r, buf)
		if readErr != nil {
			return fmt.Errorf("read column %d: %w", idx, readErr)
		}

		*column = buf

		if idx == 0 {
			hib.rawPositions = rawFlag != 0
		} else {
			hib.rawIntensities = rawFlag != 0
		}
	}

	s.hib = hib
	s.tree = nil
	s.index = nil

	return nil
}

// rawFlagValue encodes a raw-column flag for the wire.
func rawFlagValue(raw bool) int64 {
	if raw {
		return 1
	}

	return 0
}
