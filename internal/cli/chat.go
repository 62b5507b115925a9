package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/nlg"
	"github.com/Harshitk-cp/recipebot/internal/nlu"
	"github.com/Harshitk-cp/recipebot/internal/service"
	"github.com/Harshitk-cp/recipebot/internal/statemachine"
	"github.com/Harshitk-cp/recipebot/internal/store/memory"
	"github.com/Harshitk-cp/recipebot/internal/store/sqlite"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type chatOptions struct {
	sqlitePath string
	demo       bool
	seed       uint64
	strict     bool
}

func (a *App) newChatCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the dialog manager on the console",
		Long: `Run a console conversation. Each input line is one user turn; the
conversation ends when you say goodbye or close the input.

Examples:
  recipectl chat --sqlite recipes.db
  recipectl chat --demo --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", "", "SQLite catalog file")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "use the built-in demo catalog")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "phrase selection seed (0 picks one from the clock)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on dialog invariant violations")
	cmd.MarkFlagsMutuallyExclusive("sqlite", "demo")
	cmd.MarkFlagsOneRequired("sqlite", "demo")
	return cmd
}

func (a *App) runChat(ctx context.Context, opts *chatOptions) error {
	var catalog domain.RecipeCatalog
	if opts.demo {
		catalog = memory.NewCatalog(demoRecipes()...)
	} else {
		c, err := sqlite.NewCatalog(sqlite.DefaultConfig(), sqlite.WithPath(opts.sqlitePath))
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()
		catalog = c
	}

	vocab, err := catalog.Vocabulary(ctx)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}

	picker := nlg.PhrasePicker(nlg.NewTimeSeededPicker())
	if opts.seed != 0 {
		picker = nlg.NewRandomPicker(opts.seed)
	}

	machine, err := statemachine.New()
	if err != nil {
		return err
	}
	resolver := service.NewResolver(catalog, a.logger)
	dialog := service.NewDialogService(
		memory.NewSessionStore(),
		service.NewAccumulator(resolver, a.logger),
		service.NewPolicy(resolver, machine, a.logger, opts.strict),
		nlg.NewRenderer(picker),
		nlu.NewRules(vocab),
		a.logger,
	)

	tenant := uuid.New()
	res, err := dialog.StartSession(ctx, tenant)
	if err != nil {
		return err
	}
	a.say(res)

	in := bufio.NewScanner(a.stdin)
	for {
		fmt.Fprint(a.stdout, "> ")
		if !in.Scan() {
			fmt.Fprintln(a.stdout)
			return in.Err()
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			continue
		}

		res, err = dialog.TurnText(ctx, tenant, res.SessionID, text)
		if err != nil {
			return err
		}
		a.say(res)
		if res.Ended {
			return nil
		}
	}
}

func (a *App) say(res *service.TurnResult) {
	fmt.Fprintln(a.stdout, "bot:", res.Utterance)
}
