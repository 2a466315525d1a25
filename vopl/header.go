package vopl

// VOPLHeader represents the fixed fields in a VOPL v3 header.
// The per-file encoding byte is not part of it: inside a pack it is stored
// alongside each entry payload.
type VOPLHeader struct {
	Ver  uint8
	BPP  uint8
	W    uint8
	H    uint8
	D    uint8
	Pal  uint16
	PLen uint32 // payload length when parsing full .vopl files
}

const (
	magic      = "VOPL"
	version    = 3
	headerSize = 16
)
