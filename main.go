//go:build !(js && wasm)

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/voxelsplace/vdb2density/density"
	"github.com/voxelsplace/vdb2density/grid"
	"github.com/voxelsplace/vdb2density/utils"
)

type cli struct {
	stdout, stderr io.Writer
	fs             afero.Fs
	logLevel       string
}

func (c *cli) logger() log.Logger {
	var opt level.Option
	switch c.logLevel {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(c.stderr))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "run", uuid.NewString())
}

type convertCommand struct {
	*cli
	cfg utils.Config
}

func (cmd *convertCommand) run(*kingpin.ParseContext) error {
	_, err := utils.RunDensify(cmd.logger(), cmd.fs, cmd.cfg)
	return err
}

func addConvertCommand(app *kingpin.Application, c *cli) {
	cmd := &convertCommand{cli: c}
	cc := app.Command("convert", "Convert one grid into a dense .density file.").Default().Action(cmd.run)
	cc.Flag("input", "Input grid container.").Short('i').Required().StringVar(&cmd.cfg.Input)
	cc.Flag("grid", "Name of the grid to convert.").Short('g').Default(density.DefaultGrid).StringVar(&cmd.cfg.Grid)
	cc.Flag("output", "Output prefix, .density is appended.").Short('o').Default("out").StringVar(&cmd.cfg.Output)
	cc.Flag("use-metadata", "Take the dense size from this vec3i metadata key instead of the voxel bounds.").Short('u').StringVar(&cmd.cfg.MetadataKey)
	cc.Flag("skip-out-of-range", "Drop voxels outside the dense size instead of failing.").BoolVar(&cmd.cfg.SkipOutOfRange)
	cc.Flag("max-cells", "Refuse dense arrays with more cells than this (0 keeps the built-in ceiling).").Default("0").IntVar(&cmd.cfg.MaxCells)
	cc.Flag("compress", "Also write a zstd compressed copy to <output>.density.zst.").BoolVar(&cmd.cfg.Compress)
	cc.Flag("preview", "Write a GLB point cloud of the non-zero cells to this path.").StringVar(&cmd.cfg.Preview)
	cc.Flag("preview-threshold", "Minimum density of a preview point.").Default("0").Float64Var(&cmd.cfg.PreviewThreshold)
}

type gridsCommand struct {
	*cli
	input string
}

func (cmd *gridsCommand) run(*kingpin.ParseContext) error {
	return utils.RunListGrids(cmd.stdout, cmd.fs, cmd.input)
}

func addGridsCommand(app *kingpin.Application, c *cli) {
	cmd := &gridsCommand{cli: c}
	gc := app.Command("grids", "List the grids of a container and their metadata.").Action(cmd.run)
	gc.Flag("input", "Input grid container.").Short('i').Required().StringVar(&cmd.input)
}

type inspectCommand struct {
	*cli
	file string
}

func (cmd *inspectCommand) run(*kingpin.ParseContext) error {
	_, err := utils.RunInspect(cmd.stdout, cmd.fs, cmd.file)
	return err
}

func addInspectCommand(app *kingpin.Application, c *cli) {
	cmd := &inspectCommand{cli: c}
	ic := app.Command("inspect", "Print a summary of a .density file.").Action(cmd.run)
	ic.Arg("file", "The .density file.").Required().StringVar(&cmd.file)
}

// exitCode maps an error kind to the process status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, density.ErrInputOpen):
		return 2
	case errors.Is(err, density.ErrGridNotFound):
		return 4
	case errors.Is(err, density.ErrMetadataKeyNotFound):
		return 5
	case errors.Is(err, density.ErrMetadataWrongType):
		return 6
	case errors.Is(err, density.ErrIndexOutOfRange):
		return 7
	case errors.Is(err, density.ErrOutputWrite):
		return 8
	case errors.Is(err, density.ErrDimensionsTooLarge):
		return 9
	case errors.Is(err, grid.ErrDecode):
		return 3
	default:
		return 1
	}
}

func run(args []string, stdout, stderr io.Writer, fs afero.Fs) int {
	c := &cli{stdout: stdout, stderr: stderr, fs: fs}
	app := kingpin.New("vdb2density", "Convert a sparse volume grid into a dense float64 array.")
	app.UsageWriter(stdout)
	app.ErrorWriter(stderr)
	app.HelpFlag.Short('h')
	app.Flag("log.level", "Only log messages with the given severity or above.").Default("info").EnumVar(&c.logLevel, "debug", "info", "warn", "error")
	addConvertCommand(app, c)
	addGridsCommand(app, c)
	addInspectCommand(app, c)

	exited := false
	status := 0
	app.Terminate(func(code int) { exited, status = true, code })

	_, err := app.Parse(args)
	if exited {
		return status
	}
	if err == nil {
		return 0
	}
	code := exitCode(err)
	if code == 1 {
		fmt.Fprintf(stderr, "vdb2density: %v\n", err)
		return code
	}
	level.Error(c.logger()).Log("msg", "command failed", "err", err, "exit", code)
	return code
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, afero.NewOsFs()))
}
