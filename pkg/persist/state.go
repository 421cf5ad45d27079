package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manan/range-list/pkg/intensity"
)

// SaveState saves the given state to a file in the specified directory.
// The filename is constructed from the basename and the codec's extension.
func SaveState(dir, basename string, codec Codec, state any) error {
	filename := basename + codec.Extension()
	path := filepath.Join(dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer file.Close()

	err = codec.Encode(file, state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	return nil
}

// LoadState loads state from a file in the specified directory.
// The filename is constructed from the basename and the codec's extension.
// The state parameter must be a pointer to the target struct.
func LoadState(dir, basename string, codec Codec, state any) error {
	filename := basename + codec.Extension()
	path := filepath.Join(dir, filename)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}

// Persister handles I/O for a specific state type using a Codec.
type Persister[T any] struct {
	basename string
	codec    Codec
}

// NewPersister creates a persister with the given basename and codec.
func NewPersister[T any](basename string, codec Codec) *Persister[T] {
	return &Persister[T]{
		basename: basename,
		codec:    codec,
	}
}

// Save writes state to the given directory using the provided build function.
func (p *Persister[T]) Save(dir string, buildState func() *T) error {
	state := buildState()

	return SaveState(dir, p.basename, p.codec, state)
}

// Load restores state from the given directory using the provided restore function.
func (p *Persister[T]) Load(dir string, restoreState func(*T)) error {
	var state T

	err := LoadState(dir, p.basename, p.codec, &state)
	if err != nil {
		return err
	}

	restoreState(&state)

	return nil
}

// Snapshot is the persisted form of an accumulator: the canonical breakpoint
// sequence plus the name of the script that produced it.
type Snapshot struct {
	Name        string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Breakpoints []intensity.Breakpoint `json:"breakpoints"    yaml:"breakpoints"`
}

// SaveSegments writes the accumulator's snapshot under dir/basename with the
// codec's extension.
func SaveSegments(dir, basename string, codec Codec, name string, seg *intensity.Segments) error {
	persister := NewPersister[Snapshot](basename, codec)

	return persister.Save(dir, func() *Snapshot {
		return &Snapshot{Name: name, Breakpoints: seg.Breakpoints()}
	})
}

// LoadSegments restores an accumulator and its script name from a snapshot
// file.
func LoadSegments(dir, basename string, codec Codec) (*intensity.Segments, string, error) {
	persister := NewPersister[Snapshot](basename, codec)

	var (
		seg  *intensity.Segments
		name string
	)

	err := persister.Load(dir, func(snap *Snapshot) {
		seg = intensity.NewFromBreakpoints(snap.Breakpoints)
		name = snap.Name
	})
	if err != nil {
		return nil, "", err
	}

	return seg, name, nil
}
