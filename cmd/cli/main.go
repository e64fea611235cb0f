package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/pdflearn/internal/buildinfo"
	"github.com/dmitrijs2005/pdflearn/internal/client/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pdflearn",
		Short: "Terminal client for the pdflearn learning platform",
		Long: `pdflearn uploads PDF documents, generates quizzes from them and tracks
your study progress. Run it without arguments for the interactive shell.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runShell,
	}
	config.BindFlags(root.PersistentFlags())

	root.Version = buildinfo.Version
	root.SetVersionTemplate("pdflearn version {{.Version}}\n")

	root.AddCommand(
		newExecCmd("whoami", "Show the signed-in user", cobra.NoArgs),
		newExecCmd("profile [set <field> <value>]", "Show or edit your profile", cobra.ArbitraryArgs),
		newExecCmd("docs", "List your documents", cobra.NoArgs),
		newExecCmd("upload <path>", "Upload a PDF document", cobra.ExactArgs(1)),
		newExecCmd("search <query>", "Search processed documents", cobra.MinimumNArgs(1)),
		newExecCmd("attempts", "List quiz attempts", cobra.NoArgs),
		newExecCmd("quizstats", "Show quiz statistics", cobra.NoArgs),
		newExecCmd("progress", "Show the progress overview", cobra.NoArgs),
		newExecCmd("goals", "List learning goals", cobra.NoArgs),
		newExecCmd("sessions", "List study sessions", cobra.NoArgs),
		newMockServerCmd(),
		newVersionCmd(),
	)
	return root
}
