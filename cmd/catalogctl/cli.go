package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/go-catalog/internal/app"
)

// Форматы вывода.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type openFunc func(ctx context.Context, configPath string) (*app.App, error)

// cli держит состояние одного запуска: флаги корня и лениво собранное приложение.
type cli struct {
	out  io.Writer
	open openFunc

	configPath string
	output     string

	app *app.App
}

func newCLI(out io.Writer, open openFunc) *cli {
	return &cli{out: out, open: open, output: outputTable}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Command-line client for the model catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch c.output {
			case outputTable, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (table|json|yaml)", c.output)
			}
		},
	}

	root.SetOut(c.out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", outputTable, "output format: table|json|yaml")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.listCmd(),
		c.showCmd(),
	)

	return root
}

// appFor собирает приложение при первом обращении и поднимает сохранённую сессию.
func (c *cli) appFor(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	a, err := c.open(ctx, c.configPath)
	if err != nil {
		return nil, err
	}

	if err := a.Session.Hydrate(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	c.app = a
	return a, nil
}

func (c *cli) close() {
	if c.app == nil {
		return
	}

	if err := c.app.Close(); err != nil {
		c.app.Log.Warn("app_close_failed", slog.String("err", err.Error()))
	}
	c.app = nil
}
