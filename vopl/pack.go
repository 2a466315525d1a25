package vopl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// PackCompression indicates the compression used for the pack content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

// PackLayout specifies how the content section encodes entries.
type PackLayout uint8

const (
	// LayoutRaw stores entries as independent payload blobs.
	LayoutRaw PackLayout = 0
	// LayoutCDC stores a content-defined chunk dictionary and entries as sequences of chunk refs.
	LayoutCDC PackLayout = 1
)

const (
	packMagicStr = "VOPLPACK"
	packVersion1 = 1
	packVersion2 = 2
)

// PackEntry represents a single .vopl payload inside the pack.
type PackEntry struct {
	Name    string
	Enc     uint8
	Payload []byte
}

// Pack holds the common header information and entries.
type Pack struct {
	Header  VOPLHeader // common across all entries
	Entries []PackEntry
}

// IsPack reports whether data starts with the .voplpack magic.
func IsPack(data []byte) bool {
	return len(data) >= len(packMagicStr) && string(data[:len(packMagicStr)]) == packMagicStr
}

// Marshal encodes the pack with the raw layout. Raw+none and raw+zlib produce a
// v1 container; zstd needs v2.
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	if p.Header.Ver != version {
		return nil, fmt.Errorf("%w: pack header version %d", ErrFormat, p.Header.Ver)
	}
	ver := uint8(packVersion1)
	if comp == PackCompZstd {
		ver = packVersion2
	}
	var content bytes.Buffer
	_ = binary.Write(&content, binary.LittleEndian, []uint8{p.Header.Ver, p.Header.BPP, p.Header.W, p.Header.H, p.Header.D})
	_ = binary.Write(&content, binary.LittleEndian, p.Header.Pal)
	if ver >= packVersion2 {
		content.WriteByte(byte(LayoutRaw))
	}
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Entries)))
	for _, e := range p.Entries {
		if len(e.Name) > 0xFFFF {
			return nil, fmt.Errorf("entry name too long: %.32s...", e.Name)
		}
		_ = binary.Write(&content, binary.LittleEndian, uint16(len(e.Name)))
		content.WriteString(e.Name)
		content.WriteByte(e.Enc)
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(e.Payload)))
		content.Write(e.Payload)
	}

	var body []byte
	switch comp {
	case PackCompNone:
		body = content.Bytes()
	case PackCompZlib:
		body = zlibCompress(content.Bytes())
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		body = enc.EncodeAll(content.Bytes(), nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("unsupported pack compression: %d", comp)
	}

	out := make([]byte, 0, len(packMagicStr)+2+len(body))
	out = append(out, packMagicStr...)
	out = append(out, ver, uint8(comp))
	return append(out, body...), nil
}

func decompressPackContent(comp PackCompression, b []byte) ([]byte, error) {
	switch comp {
	case PackCompNone:
		return b, nil
	case PackCompZlib:
		return zlibDecompress(b)
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(b, nil)
	default:
		return nil, fmt.Errorf("unsupported pack compression: %d", comp)
	}
}

// UnmarshalPack parses a .voplpack and returns the pack structure and compression used.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < len(packMagicStr)+2 || !IsPack(data) {
		return nil, 0, ErrFormat
	}
	ver := data[8]
	comp := PackCompression(data[9])
	if ver != packVersion1 && ver != packVersion2 {
		return nil, 0, fmt.Errorf("%w: unsupported pack version %d", ErrFormat, ver)
	}
	content, err := decompressPackContent(comp, data[10:])
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	r := &leReader{r: bytes.NewReader(content)}
	var hdr VOPLHeader
	r.read(&hdr.Ver)
	r.read(&hdr.BPP)
	r.read(&hdr.W)
	r.read(&hdr.H)
	r.read(&hdr.D)
	r.read(&hdr.Pal)
	layout := LayoutRaw
	if ver >= packVersion2 {
		r.read(&layout)
	}
	if r.err != nil {
		return nil, 0, fmt.Errorf("%w: pack header: %v", ErrFormat, r.err)
	}

	var entries []PackEntry
	switch layout {
	case LayoutRaw:
		entries, err = readRawEntries(r)
	case LayoutCDC:
		entries, err = readCDCEntries(r)
	default:
		err = fmt.Errorf("unknown layout %d", layout)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return &Pack{Header: hdr, Entries: entries}, comp, nil
}

func readEntryName(r *leReader) (string, uint8) {
	var nameLen uint16
	r.read(&nameLen)
	name := r.bytes(int(nameLen))
	var enc uint8
	r.read(&enc)
	return string(name), enc
}

func readRawEntries(r *leReader) ([]PackEntry, error) {
	var n uint32
	r.read(&n)
	var entries []PackEntry
	for i := uint32(0); i < n && r.err == nil; i++ {
		name, enc := readEntryName(r)
		var plen uint32
		r.read(&plen)
		if r.err == nil && int64(plen) > int64(r.r.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		payload := r.bytes(int(plen))
		entries = append(entries, PackEntry{Name: name, Enc: enc, Payload: payload})
	}
	return entries, r.err
}

// readCDCEntries reassembles entries stored as sequences of references into a
// shared chunk dictionary.
func readCDCEntries(r *leReader) ([]PackEntry, error) {
	var target, minSz, maxSz, nBlocks uint32
	r.read(&target)
	r.read(&minSz)
	r.read(&maxSz)
	r.read(&nBlocks)
	if r.err != nil {
		return nil, r.err
	}
	var blocks [][]byte
	for i := uint32(0); i < nBlocks && r.err == nil; i++ {
		var blen uint32
		r.read(&blen)
		if r.err == nil && int64(blen) > int64(r.r.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		blocks = append(blocks, r.bytes(int(blen)))
	}
	var n uint32
	r.read(&n)
	var entries []PackEntry
	for i := uint32(0); i < n && r.err == nil; i++ {
		name, enc := readEntryName(r)
		var rawLen, seqLen uint32
		r.read(&rawLen)
		r.read(&seqLen)
		payload := make([]byte, 0, rawLen)
		for j := uint32(0); j < seqLen && r.err == nil; j++ {
			var idx uint32
			r.read(&idx)
			if r.err != nil {
				break
			}
			if idx >= uint32(len(blocks)) {
				return nil, fmt.Errorf("chunk reference %d out of range", idx)
			}
			payload = append(payload, blocks[idx]...)
			if uint64(len(payload)) > uint64(rawLen)+uint64(maxSz) {
				return nil, fmt.Errorf("entry %q exceeds its declared length", name)
			}
		}
		if uint32(len(payload)) > rawLen {
			payload = payload[:rawLen]
		}
		entries = append(entries, PackEntry{Name: name, Enc: enc, Payload: payload})
	}
	return entries, r.err
}
