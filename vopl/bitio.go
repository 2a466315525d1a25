package vopl

import "io"

// bitPacker appends fixed-width fields least significant bit first.
type bitPacker struct {
	out   []byte
	word  uint64
	nbits uint8
}

func (p *bitPacker) put(v uint64, width uint8) {
	p.word |= (v & (1<<width - 1)) << p.nbits
	for p.nbits += width; p.nbits >= 8; p.nbits -= 8 {
		p.out = append(p.out, byte(p.word))
		p.word >>= 8
	}
}

// finish pads the last partial byte with zeros.
func (p *bitPacker) finish() []byte {
	if p.nbits > 0 {
		p.out = append(p.out, byte(p.word))
		p.word, p.nbits = 0, 0
	}
	return p.out
}

// bitUnpacker reads fields written by bitPacker.
type bitUnpacker struct {
	in    []byte
	word  uint64
	nbits uint8
}

func (u *bitUnpacker) next(width uint8) (uint64, error) {
	for u.nbits < width {
		if len(u.in) == 0 {
			return 0, io.ErrUnexpectedEOF
		}
		u.word |= uint64(u.in[0]) << u.nbits
		u.in = u.in[1:]
		u.nbits += 8
	}
	v := u.word & (1<<width - 1)
	u.word >>= width
	u.nbits -= width
	return v, nil
}
