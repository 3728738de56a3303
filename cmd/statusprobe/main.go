package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/evolveapp/statusprobe/internal/config"
	"github.com/evolveapp/statusprobe/internal/schedule"
)

// set via -ldflags at release time
var (
	version = "HEAD"
	commit  = "unknown"
)

type StatusProbeCommand struct {
	OutStream io.Writer
	ErrStream io.Writer

	ConfigPath   string
	OutputPath   string
	ScheduleSpec string
	ShowVersion  bool
	ShowHelp     bool
}

func main() {
	cmd := &StatusProbeCommand{
		OutStream: os.Stdout,
		ErrStream: os.Stderr,
	}
	os.Exit(cmd.Run(os.Args))
}

func (cmd *StatusProbeCommand) flagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SortFlags = false
	flags.SetOutput(cmd.ErrStream)

	flags.StringVarP(&cmd.ConfigPath, "config", "c", "", "Path to configuration file")
	flags.StringVarP(&cmd.OutputPath, "output", "o", "-", `Where to write the status document ("-" means stdout)`)
	flags.StringVarP(&cmd.ScheduleSpec, "schedule", "s", "", "Keep running on this schedule instead of checking once")
	flags.BoolVarP(&cmd.ShowVersion, "version", "v", false, "Show version")
	flags.BoolVarP(&cmd.ShowHelp, "help", "h", false, "Show help message")

	return flags
}

func (cmd *StatusProbeCommand) PrintUsage(flags *pflag.FlagSet) {
	fmt.Fprintf(cmd.ErrStream, "statusprobe -- synthetic status-page probe\n")
	fmt.Fprintf(cmd.ErrStream, "\nUsage: %s [options]\n\nOptions:\n", flags.Name())
	fmt.Fprint(cmd.ErrStream, flags.FlagUsages())
}

func (cmd *StatusProbeCommand) PrintVersion() {
	fmt.Fprintf(cmd.OutStream, "statusprobe version %s (%s)\n", version, commit)
}

func (cmd *StatusProbeCommand) Run(args []string) (exitCode int) {
	flags := cmd.flagSet(args[0])

	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", args[0])
		return 2
	}

	if cmd.ShowVersion {
		cmd.PrintVersion()
		return 0
	}
	if cmd.ShowHelp {
		cmd.PrintUsage(flags)
		return 0
	}

	conf, err := config.Load(cmd.ConfigPath)
	if err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		return 2
	}

	logger, err := newLogger(conf.Log)
	if err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		return 2
	}
	defer logger.Sync()

	spec := cmd.ScheduleSpec
	if spec == "" {
		spec = conf.Schedule
	}

	ctx := context.Background()

	if spec == "" {
		return cmd.RunOneshot(ctx, conf, logger)
	}

	sched, err := schedule.Parse(spec)
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "invalid schedule %q: %s\n", spec, err)
		return 2
	}

	return cmd.RunSchedule(ctx, conf, sched, logger)
}
