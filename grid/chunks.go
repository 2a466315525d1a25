package grid

import (
	"fmt"
	"slices"
	"strings"

	"github.com/voxelsplace/vdb2density/vopl"
)

// ChunkSource serves VOPL chunks (.vopl, .voplpack, VPI18 streams) as grids.
// Every filled voxel becomes a voxel-level sample whose value is its palette index.
type ChunkSource struct {
	chunks map[string]chunk
	names  []string
}

type chunk struct {
	metadata Metadata
	decode   func() (*vopl.VoxelGrid, error)
}

func newChunkSource() *ChunkSource {
	return &ChunkSource{chunks: make(map[string]chunk)}
}

func (s *ChunkSource) add(name string, c chunk) error {
	if _, dup := s.chunks[name]; dup {
		return fmt.Errorf("%w: chunk %q listed twice", ErrDecode, name)
	}
	s.chunks[name] = c
	s.names = append(s.names, name)
	slices.Sort(s.names)
	return nil
}

func headerMetadata(h vopl.VOPLHeader) Metadata {
	return Metadata{
		"dims":    Vec3i{int32(h.W), int32(h.H), int32(h.D)},
		"bpp":     Int(h.BPP),
		"palette": Int(h.Pal),
	}
}

// NewVOPLSource serves a single .vopl file as the grid name.
func NewVOPLSource(name string, data []byte) (*ChunkSource, error) {
	hdr, enc, payload, err := vopl.ParseVOPLHeaderFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	s := newChunkSource()
	err = s.add(name, chunk{
		metadata: headerMetadata(hdr),
		decode:   func() (*vopl.VoxelGrid, error) { return vopl.DecodePayload(hdr, enc, payload) },
	})
	return s, err
}

// NewVOPLPackSource serves every entry of a .voplpack, named without its .vopl suffix.
func NewVOPLPackSource(data []byte) (*ChunkSource, error) {
	pack, _, err := vopl.UnmarshalPack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	s := newChunkSource()
	for _, e := range pack.Entries {
		err := s.add(strings.TrimSuffix(e.Name, ".vopl"), chunk{
			metadata: headerMetadata(pack.Header),
			decode:   func() (*vopl.VoxelGrid, error) { return vopl.DecodePayload(pack.Header, e.Enc, e.Payload) },
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewVPISource serves a VPI18 voxel stream as the grid name.
func NewVPISource(name string, data []byte) *ChunkSource {
	s := newChunkSource()
	_ = s.add(name, chunk{
		metadata: Metadata{"dims": Vec3i{vopl.Width, vopl.Height, vopl.Depth}},
		decode:   func() (*vopl.VoxelGrid, error) { return vopl.VPI18DecodeToGrid(data) },
	})
	return s
}

func (s *ChunkSource) GridNames() []string { return slices.Clone(s.names) }

func (s *ChunkSource) Metadata(name string) (Metadata, error) {
	c, ok := s.chunks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c.metadata, nil
}

func (s *ChunkSource) Load(name string) (Grid, error) {
	c, ok := s.chunks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	vg, err := c.decode()
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %q: %w", ErrDecode, name, err)
	}
	var samples []Sample
	for v := range vg.Filled() {
		samples = append(samples, Sample{
			Coord: Coord{X: int32(v.X), Y: int32(v.Y), Z: int32(v.Z)},
			Value: float64(v.Color),
			Level: LevelVoxel,
		})
	}
	return NewMemoryGrid(name, samples, c.metadata), nil
}
