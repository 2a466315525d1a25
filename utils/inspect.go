package utils

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/voxelsplace/vdb2density/density"
	"github.com/voxelsplace/vdb2density/grid"
)

// Inspection summarizes a decoded .density file.
type Inspection struct {
	Dims    density.Dimensions
	Size    int64
	NonZero int
	Max     float64
	Digest  uint64
}

// RunInspect decodes the .density file at path and prints a summary to w.
func RunInspect(w io.Writer, fs afero.Fs, path string) (*Inspection, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", grid.ErrOpen, err)
	}
	defer f.Close()

	h := xxhash.New()
	a, err := density.Decode(io.TeeReader(f, h))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", grid.ErrDecode, path, err)
	}
	in := &Inspection{Dims: a.Dims, Size: density.EncodedSize(a.Dims), Digest: h.Sum64()}
	for _, v := range a.Cells {
		if v != 0 {
			in.NonZero++
		}
		in.Max = max(in.Max, v)
	}

	fmt.Fprintf(w, "file:     %s\n", path)
	fmt.Fprintf(w, "size:     %s\n", a.Dims)
	fmt.Fprintf(w, "cells:    %s\n", humanize.Comma(int64(a.Dims.Cells())))
	fmt.Fprintf(w, "non-zero: %s\n", humanize.Comma(int64(in.NonZero)))
	fmt.Fprintf(w, "max:      %g\n", in.Max)
	fmt.Fprintf(w, "bytes:    %s\n", humanize.Bytes(uint64(in.Size)))
	fmt.Fprintf(w, "xxhash:   %016x\n", in.Digest)
	return in, nil
}
