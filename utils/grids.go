package utils

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/voxelsplace/vdb2density/grid"
)

// RunListGrids prints every grid of the input with its metadata.
func RunListGrids(w io.Writer, fs afero.Fs, path string) error {
	src, err := grid.Open(fs, path)
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	for _, name := range src.GridNames() {
		md, err := src.Metadata(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, bold.Sprint(name))
		for _, key := range md.Keys() {
			fmt.Fprintf(w, "  %s: %s\n", key, md[key])
		}
	}
	return nil
}
