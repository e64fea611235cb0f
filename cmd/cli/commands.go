package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/pdflearn/internal/buildinfo"
	"github.com/dmitrijs2005/pdflearn/internal/client/cli"
	"github.com/dmitrijs2005/pdflearn/internal/client/config"
	"github.com/dmitrijs2005/pdflearn/internal/fakeapi"
)

// withApp loads the configuration, assembles the client and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) error {
	cfg, err := config.LoadConfig(config.Source{Flags: cmd.Flags()})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, err := cli.NewApp(ctx, cfg, cli.Terminal{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
	if err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := c.Stop(stopCtx); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "shutdown:", err)
		}
	}()

	return fn(ctx, c.App)
}

func runShell(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, app *cli.App) error {
		app.Run(ctx)
		return nil
	})
}

// newExecCmd exposes one shell command as a subcommand.
func newExecCmd(use, short string, args cobra.PositionalArgs) *cobra.Command {
	name, _, _ := strings.Cut(use, " ")
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Exec(ctx, append([]string{name}, args...)...)
			})
		},
	}
}

func newMockServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory API for local demos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			user, _ := cmd.Flags().GetString("demo-user")

			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			srv := fakeapi.New(fakeapi.WithLogger(log))
			if user != "" {
				name, password, ok := strings.Cut(user, ":")
				if !ok {
					return fmt.Errorf("--demo-user must be name:password")
				}
				if _, err := srv.CreateUser(name, password); err != nil {
					return fmt.Errorf("create demo user: %w", err)
				}
			}
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().String("addr", "localhost:8000", "listen address")
	cmd.Flags().String("demo-user", "", "create an account up front, as name:password")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
