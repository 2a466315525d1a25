package grid

import (
	"fmt"
	"iter"
	"slices"
)

// MemoryGrid is a Grid backed by an owned slice of samples.
type MemoryGrid struct {
	name     string
	samples  []Sample
	metadata Metadata
}

// NewMemoryGrid takes ownership of samples and metadata.
func NewMemoryGrid(name string, samples []Sample, metadata Metadata) *MemoryGrid {
	return &MemoryGrid{name: name, samples: samples, metadata: metadata}
}

// Buffer copies every sample of g into a MemoryGrid. Use it for grids whose
// sequence can only be consumed once.
func Buffer(g Grid) *MemoryGrid {
	return NewMemoryGrid(g.Name(), slices.Collect(g.All()), g.Metadata())
}

func (g *MemoryGrid) Name() string       { return g.name }
func (g *MemoryGrid) Metadata() Metadata { return g.metadata }
func (g *MemoryGrid) Len() int           { return len(g.samples) }

func (g *MemoryGrid) All() iter.Seq[Sample] {
	return slices.Values(g.samples)
}

// MemorySource serves already-loaded grids.
type MemorySource struct {
	grids map[string]*MemoryGrid
	names []string
}

// NewMemorySource returns a Source over grids. Later grids replace earlier ones
// with the same name.
func NewMemorySource(grids ...*MemoryGrid) *MemorySource {
	s := &MemorySource{grids: make(map[string]*MemoryGrid, len(grids))}
	for _, g := range grids {
		if _, dup := s.grids[g.name]; !dup {
			s.names = append(s.names, g.name)
		}
		s.grids[g.name] = g
	}
	slices.Sort(s.names)
	return s
}

func (s *MemorySource) GridNames() []string { return slices.Clone(s.names) }

func (s *MemorySource) Metadata(name string) (Metadata, error) {
	g, ok := s.grids[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return g.metadata, nil
}

func (s *MemorySource) Load(name string) (Grid, error) {
	g, ok := s.grids[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return g, nil
}
