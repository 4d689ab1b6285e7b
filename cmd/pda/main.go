// Package main runs the handheld.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	_ "go.tdeck.dev/pda/components/register"
	"go.tdeck.dev/pda/config"
	"go.tdeck.dev/pda/device"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

const (
	flagConfig   = "config"
	flagDebug    = "debug"
	flagLogFile  = "log-file"
	flagHeadless = "headless"
	flagNoWatch  = "no-watch"
)

func main() {
	app := &cli.App{
		Name:            "pda",
		Usage:           "run the handheld",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				Value:   "/etc/pda.json5",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to a rotating `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagHeadless,
				Usage: "drive the trackball and keys from stdin",
			},
			&cli.BoolFlag{
				Name:  flagNoWatch,
				Usage: "do not reload log levels when the config file changes",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the config file",
				Action: schemaAction,
			},
			{
				Name:   "models",
				Usage:  "list the component models this build knows",
				Action: modelsAction,
			},
			{
				Name:  "validate",
				Usage: "read and validate the config file",
				Action: func(c *cli.Context) error {
					if _, err := config.Read(c.String(flagConfig), logging.NewBlankLogger("validate")); err != nil {
						return err
					}
					pterm.Success.WithWriter(c.App.Writer).Println("config OK")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) (err error) {
	out := c.App.Writer
	var tty *terminal
	if c.Bool(flagHeadless) {
		if tty, err = openTerminal(os.Stdin, os.Stdout); err != nil {
			return err
		}
		if tty != nil {
			defer func() {
				err = multierr.Combine(err, tty.Close())
			}()
			out = tty.out
		}
	}

	level := logging.INFO
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}
	logger := logging.NewWriterLogger("pda", level, out)
	if path := c.String(flagLogFile); path != "" {
		appender, closer := logging.NewFileAppender(logging.FileAppenderConfig{Path: path, MaxBackups: 3})
		logger.AddAppender(appender)
		defer func() {
			err = multierr.Combine(err, closer.Close())
		}()
	}

	cfg, err := config.Read(c.String(flagConfig), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := device.Options{
		Display:     out,
		Headless:    c.Bool(flagHeadless),
		Input:       os.Stdin,
		WatchConfig: !c.Bool(flagNoWatch),
		Debug:       c.Bool(flagDebug),
	}
	if tty != nil {
		opts.RawInput = true
		opts.DisplayWidth = tty.width
		pterm.Info.WithWriter(out).Println("arrows move, Enter clicks, other keys type, Ctrl-C quits")
	}
	d, err := device.New(ctx, cfg, opts, logger)
	if err != nil {
		return errors.Wrap(err, "starting device")
	}
	defer func() {
		err = multierr.Combine(err, d.Close(context.Background()))
	}()

	logger.Info("device running")
	return d.Run(ctx)
}

func schemaAction(c *cli.Context) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(schema))
	return nil
}

func modelsAction(c *cli.Context) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"API", "Model"})
	for _, m := range resource.RegisteredModels() {
		t.AppendRow(table.Row{m.API, m.Model})
	}
	fmt.Fprintln(c.App.Writer, t.Render())
	return nil
}
