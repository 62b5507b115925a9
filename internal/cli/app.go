// Package cli implements recipectl, the command-line companion of the
// recipebot service.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Harshitk-cp/recipebot/internal/buildconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	root   *cobra.Command
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
}

func New() *App {
	app := &App{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: zap.NewNop(),
	}

	var verbose bool
	app.root = &cobra.Command{
		Use:   "recipectl",
		Short: "Import recipes and talk to the recipe dialog manager",
		Long: `recipectl loads recipe spreadsheet exports into a catalog and runs
console conversations against it with the same dialog manager the
recipebot service uses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			app.logger = logger
			return nil
		},
	}
	app.root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log dialog decisions to stderr")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newImportCmd(),
		app.newChatCmd(),
	)
	return app
}

// WithIO sets custom input and output streams.
func (a *App) WithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetIn(stdin)
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return a.root.ExecuteContext(ctx)
}

func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, buildconfig.String())
		},
	}
}
