package command

import (
	"os"
	"sort"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fastygo/taskboard/pkg/logger"
)

const metadataLogger = "logger"

func Main(name string, usage string, commands ...*cli.Command) {
	app := &cli.App{
		Name:     name,
		Usage:    usage,
		Commands: commands,
		Before: func(ctx *cli.Context) error {
			log, err := logger.New(logger.Config{
				Level:    ctx.String(paramLogLevel),
				Encoding: "console",
				Output:   zapcore.AddSync(os.Stderr),
			})
			if err != nil {
				return err
			}
			ctx.App.Metadata = map[string]interface{}{metadataLogger: log}
			return nil
		},
		Flags: globalFlags(),
	}

	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err == nil {
			return
		}
		loggerFrom(ctx).Error(err.Error())
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func loggerFrom(ctx *cli.Context) *zap.Logger {
	if ctx.App.Metadata != nil {
		if log, ok := ctx.App.Metadata[metadataLogger].(*zap.Logger); ok {
			return log
		}
	}
	log, err := logger.New(logger.Config{Level: "warn", Encoding: "console", Output: zapcore.AddSync(os.Stderr)})
	if err != nil {
		return zap.NewNop()
	}
	return log
}
