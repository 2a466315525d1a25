package grid

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// A manifest is a JSON document listing grids, their typed metadata and their
// samples. It may be zstd-compressed.
//
//	{"grids":[{"name":"density",
//	  "metadata":{"file_bbox_max":{"vec3i":[4,4,4]}},
//	  "samples":[{"x":1,"y":2,"z":3,"value":5.0},
//	             {"x":0,"y":0,"z":0,"value":0.5,"level":"internal"}]}]}
type manifestDoc struct {
	Grids []manifestGrid `json:"grids"`
}

type manifestGrid struct {
	Name     string                         `json:"name"`
	Metadata map[string]jsoniter.RawMessage `json:"metadata"`
	Samples  jsoniter.RawMessage            `json:"samples"`
}

type manifestSample struct {
	X     int32   `json:"x"`
	Y     int32   `json:"y"`
	Z     int32   `json:"z"`
	Value float64 `json:"value"`
	Level string  `json:"level"`
}

// ManifestSource serves grids described by a manifest. Descriptors are parsed
// when the source is created; samples are decoded by Load.
type ManifestSource struct {
	grids map[string]manifestEntry
	names []string
}

type manifestEntry struct {
	metadata Metadata
	samples  jsoniter.RawMessage
}

func isZstd(data []byte) bool { return bytes.HasPrefix(data, zstdMagic) }

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// NewManifestSource parses a manifest, decompressing it first if it is a zstd frame.
func NewManifestSource(data []byte) (*ManifestSource, error) {
	if isZstd(data) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("%w: manifest: %w", ErrDecode, err)
		}
	}
	var doc manifestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrDecode, err)
	}

	s := &ManifestSource{grids: make(map[string]manifestEntry, len(doc.Grids))}
	for i, g := range doc.Grids {
		if g.Name == "" {
			return nil, fmt.Errorf("%w: manifest grid #%d has no name", ErrDecode, i)
		}
		if _, dup := s.grids[g.Name]; dup {
			return nil, fmt.Errorf("%w: manifest grid %q listed twice", ErrDecode, g.Name)
		}
		md := make(Metadata, len(g.Metadata))
		for key, raw := range g.Metadata {
			v, err := decodeMetadataValue(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: grid %q metadata %q: %w", ErrDecode, g.Name, key, err)
			}
			md[key] = v
		}
		s.grids[g.Name] = manifestEntry{metadata: md, samples: g.Samples}
		s.names = append(s.names, g.Name)
	}
	slices.Sort(s.names)
	return s, nil
}

// decodeMetadataValue decodes a single-key object such as {"vec3i":[1,2,3]}.
func decodeMetadataValue(raw jsoniter.RawMessage) (MetadataValue, error) {
	var tagged map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("expected exactly one type key, got %d", len(tagged))
	}
	typ := slices.Collect(maps.Keys(tagged))[0]
	body := tagged[typ]

	var err error
	switch typ {
	case "vec3i":
		var v Vec3i
		err = json.Unmarshal(body, &v)
		return v, err
	case "vec3d":
		var v Vec3d
		err = json.Unmarshal(body, &v)
		return v, err
	case "int":
		var v Int
		err = json.Unmarshal(body, &v)
		return v, err
	case "float":
		var v Float
		err = json.Unmarshal(body, &v)
		return v, err
	case "string":
		var v String
		err = json.Unmarshal(body, &v)
		return v, err
	case "bool":
		var v Bool
		err = json.Unmarshal(body, &v)
		return v, err
	default:
		return Unsupported{Type: typ}, nil
	}
}

func (s *ManifestSource) GridNames() []string { return slices.Clone(s.names) }

func (s *ManifestSource) Metadata(name string) (Metadata, error) {
	e, ok := s.grids[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e.metadata, nil
}

func (s *ManifestSource) Load(name string) (Grid, error) {
	e, ok := s.grids[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	var raw []manifestSample
	if len(e.samples) > 0 {
		if err := json.Unmarshal(e.samples, &raw); err != nil {
			return nil, fmt.Errorf("%w: grid %q: %w", ErrDecode, name, err)
		}
	}
	samples := make([]Sample, len(raw))
	for i, r := range raw {
		level := LevelVoxel
		if r.Level != "" {
			var err error
			if level, err = ParseLevel(r.Level); err != nil {
				return nil, fmt.Errorf("%w: grid %q sample #%d: %w", ErrDecode, name, i, err)
			}
		}
		samples[i] = Sample{Coord: Coord{X: r.X, Y: r.Y, Z: r.Z}, Value: r.Value, Level: level}
	}
	return NewMemoryGrid(name, samples, e.metadata), nil
}
