package utils

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"

	"github.com/voxelsplace/vdb2density/density"
	"github.com/voxelsplace/vdb2density/grid"
	"github.com/voxelsplace/vdb2density/preview"
)

// Report describes the files written by RunDensify.
type Report struct {
	*density.Result

	Path   string
	Bytes  int64
	Digest uint64

	CompressedPath  string
	CompressedBytes int64

	PreviewPath   string
	PreviewPoints int
}

// RunDensify converts cfg.Grid of cfg.Input (read from fs) and writes the
// .density file plus the optional zstd copy and GLB preview. The .density
// file is committed last: it only appears when every requested output was
// written, though optional outputs written before a failure are left behind.
func RunDensify(logger log.Logger, fs afero.Fs, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, err := grid.Open(fs, cfg.Input)
	if err != nil {
		return nil, err
	}
	level.Debug(logger).Log("msg", "opened input", "path", cfg.Input)
	density.LogGrids(logger, src)

	res, err := density.Convert(logger, src, cfg.options())
	if err != nil {
		return nil, err
	}
	rep := &Report{Result: res, Path: cfg.DensityPath()}

	if cfg.Compress {
		rep.CompressedPath = cfg.CompressedPath()
		err = writeFile(rep.CompressedPath, func(w io.Writer) error {
			cw := &countingWriter{w: w}
			enc, err := zstd.NewWriter(cw)
			if err != nil {
				return err
			}
			if _, err := res.Array.WriteTo(enc); err != nil {
				enc.Close()
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}
			rep.CompressedBytes = cw.n
			return nil
		})
		if err != nil {
			return nil, err
		}
		level.Info(logger).Log("msg", "wrote compressed density", "path", rep.CompressedPath, "size", humanize.Bytes(uint64(rep.CompressedBytes)))
	}

	if cfg.Preview != "" {
		rep.PreviewPath = cfg.Preview
		err = writeFile(rep.PreviewPath, func(w io.Writer) error {
			n, err := preview.WriteGLB(w, res.Array, res.Stats.MaxValue, preview.Options{Threshold: cfg.PreviewThreshold})
			rep.PreviewPoints = n
			return err
		})
		if err != nil {
			return nil, err
		}
		level.Info(logger).Log("msg", "wrote preview", "path", rep.PreviewPath, "points", rep.PreviewPoints)
	}

	h := xxhash.New()
	err = writeFile(rep.Path, func(w io.Writer) error {
		n, err := res.Array.WriteTo(io.MultiWriter(w, h))
		rep.Bytes = n
		return err
	})
	if err != nil {
		return nil, err
	}
	rep.Digest = h.Sum64()
	level.Info(logger).Log("msg", "wrote density", "path", rep.Path, "size", humanize.Bytes(uint64(rep.Bytes)), "xxhash", fmt.Sprintf("%016x", rep.Digest))
	return rep, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
