package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/conversation"
	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/repository"
)

// errUsage marks a command line that could not be run as typed.
var errUsage = errors.New("usage error")

const (
	usageAddIngredient = "add ingredient <name> | <supplier> | <price> | <expiration> | <quantity>"
	usageAddRecipe     = "add recipe <name> | <ingredient>, <ingredient> | <description>"
	usageRemoveIngr    = "remove ingredient <name>"
	usageRemoveRecipe  = "remove recipe <name>"
	usageShowRecipe    = "show recipe <name>"
	usageSearch        = "find <text>"
)

// output is where results are rendered. *display.UI satisfies it; one-shot
// mode uses plainOutput.
type output interface {
	PrintChat(text string)
	PrintHeading(text string)
	PrintLine(text string)
	PrintHint(text string)
	PrintUrgent(text string)
	PrintBlock(block string)
}

type cliApp struct {
	repo     *repository.Repository
	parser   domain.CommandParser
	notifier domain.Notifier
	out      output
	prompter *conversation.Prompter // nil when prompting is not allowed
	log      *logger.Logger
}

func newCLIApp(repo *repository.Repository, out output, prompter *conversation.Prompter, log *logger.Logger) *cliApp {
	printFn := func(format string, a ...interface{}) { out.PrintChat(fmt.Sprintf(format, a...)) }
	urgentFn := func(format string, a ...interface{}) { out.PrintUrgent(fmt.Sprintf(format, a...)) }
	return &cliApp{
		repo:     repo,
		parser:   conversation.NewKeywordParser(log),
		notifier: conversation.NewCLINotifier(log, printFn, urgentFn),
		out:      out,
		prompter: prompter,
		log:      log,
	}
}

// run reads commands until quit, the input closes or ctx is done.
func (a *cliApp) run(ctx context.Context, lines conversation.LineSource) {
	a.say(ctx, conversation.LineWelcome())
	a.out.PrintHint("Type 'help' for commands, 'quit' to exit.")

	for {
		input, err := lines(ctx)
		if err != nil {
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		cmd, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("command: %s (payload=%q)", cmd.Type, cmd.Payload)
		if err := a.execute(ctx, cmd); err != nil {
			a.report(ctx, err)
			if errors.Is(err, domain.ErrInputClosed) || errors.Is(err, context.Canceled) {
				return
			}
		}
		if cmd.Type == domain.CommandQuit {
			return
		}
	}
}

// runOnce executes a single command line without prompting and returns
// the process exit code.
func (a *cliApp) runOnce(ctx context.Context, line string) int {
	cmd, err := a.parser.Parse(ctx, line)
	if err != nil {
		a.report(ctx, err)
		return 2
	}
	a.log.Debug("one-shot command: %s (payload=%q)", cmd.Type, cmd.Payload)

	err = a.execute(ctx, cmd)
	if err != nil {
		a.report(ctx, err)
	}
	return exitCode(err)
}

// exitCode maps an execution error to the process exit status. Not-found
// is informational.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		return 1
	}
}

func (a *cliApp) say(ctx context.Context, text string) {
	_ = a.notifier.Notify(ctx, text)
}

// report renders a failure. Not-found reads as a plain line; the rest are
// urgent.
func (a *cliApp) report(ctx context.Context, err error) {
	switch {
	case errors.Is(err, errUsage):
		_ = a.notifier.NotifyUrgent(ctx, strings.TrimSuffix(err.Error(), ": "+errUsage.Error()))
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrCancelled):
		a.say(ctx, conversation.LineError(err))
	default:
		_ = a.notifier.NotifyUrgent(ctx, conversation.LineError(err))
		if errors.Is(err, domain.ErrPersistence) {
			a.out.PrintHint(conversation.LineKeptInMemory())
		}
	}
}

func missingArgs(usage string) error {
	return fmt.Errorf("%s: %w", conversation.LineMissingArgs(usage), errUsage)
}

// execute runs one command. Successful results are printed here; failures
// are returned for the caller to report.
func (a *cliApp) execute(ctx context.Context, cmd *domain.Command) error {
	switch cmd.Type {
	case domain.CommandHelp:
		a.showHelp()
	case domain.CommandQuit:
		a.say(ctx, conversation.LineBye())
	case domain.CommandListAll:
		a.listRecipes(ctx)
		a.listIngredients(ctx)
	case domain.CommandListIngredients:
		a.listIngredients(ctx)
	case domain.CommandListRecipes:
		a.listRecipes(ctx)
	case domain.CommandAddIngredient:
		return a.addIngredient(ctx, cmd)
	case domain.CommandAddRecipe:
		return a.addRecipe(ctx, cmd)
	case domain.CommandRemoveIngredient:
		return a.remove(ctx, cmd, "ingredient", usageRemoveIngr, a.repo.RemoveIngredient)
	case domain.CommandRemoveRecipe:
		return a.remove(ctx, cmd, "recipe", usageRemoveRecipe, a.repo.RemoveRecipe)
	case domain.CommandShowRecipe:
		return a.showRecipe(ctx, cmd)
	case domain.CommandSearch:
		return a.search(ctx, cmd)
	default:
		return fmt.Errorf("%s: %w", conversation.LineUnknown(cmd.Payload), errUsage)
	}
	return nil
}

// ── Listing ──────────────────────────────────────────────────────

func (a *cliApp) listIngredients(ctx context.Context) {
	items := a.repo.ListIngredients(ctx)
	if len(items) == 0 {
		a.out.PrintHint(conversation.LineNoIngredients())
		return
	}
	a.out.PrintHeading(fmt.Sprintf("Ingredients (%d)", len(items)))
	a.out.PrintBlock(display.RenderIngredients(items))
}

func (a *cliApp) listRecipes(ctx context.Context) {
	items := a.repo.ListRecipes(ctx)
	if len(items) == 0 {
		a.out.PrintHint(conversation.LineNoRecipes())
		return
	}
	a.out.PrintHeading(fmt.Sprintf("Recipes (%d)", len(items)))
	a.out.PrintBlock(display.RenderRecipes(items))
}

// ── Create ───────────────────────────────────────────────────────

func (a *cliApp) addIngredient(ctx context.Context, cmd *domain.Command) error {
	var (
		in  domain.Ingredient
		err error
	)
	switch {
	case !cmd.Interactive():
		in, err = conversation.ParseIngredientArgs(cmd.Payload)
	case a.prompter != nil:
		in, err = a.prompter.Ingredient(ctx)
	default:
		return missingArgs(usageAddIngredient)
	}
	if err != nil {
		return err
	}

	stored, err := a.repo.CreateIngredient(ctx, in)
	if err != nil {
		return err
	}
	a.say(ctx, conversation.LineIngredientCreated(stored))
	return nil
}

func (a *cliApp) addRecipe(ctx context.Context, cmd *domain.Command) error {
	var (
		in  domain.Recipe
		err error
	)
	switch {
	case !cmd.Interactive():
		in, err = conversation.ParseRecipeArgs(cmd.Payload)
	case a.prompter != nil:
		in, err = a.prompter.Recipe(ctx)
	default:
		return missingArgs(usageAddRecipe)
	}
	if err != nil {
		return err
	}

	stored, err := a.repo.CreateRecipe(ctx, in)
	if err != nil {
		return err
	}
	a.say(ctx, conversation.LineRecipeCreated(stored))
	if missing, err := a.repo.MissingReferences(ctx, stored.Name); err == nil && len(missing) > 0 {
		a.out.PrintHint(conversation.LineMissingReferences(missing))
	}
	return nil
}

// ── Remove ───────────────────────────────────────────────────────

func (a *cliApp) remove(ctx context.Context, cmd *domain.Command, kind, usage string, removeFn func(context.Context, string) (int, error)) error {
	name, err := a.target(ctx, cmd, fmt.Sprintf("Name of the %s to remove:", kind), usage)
	if err != nil {
		return err
	}

	n, err := removeFn(ctx, name)
	if err != nil {
		return err
	}
	a.say(ctx, conversation.LineRemoved(kind, name, n))
	return nil
}

// target returns the command payload, or asks for it when prompting is
// available.
func (a *cliApp) target(ctx context.Context, cmd *domain.Command, label, usage string) (string, error) {
	if !cmd.Interactive() {
		return cmd.Payload, nil
	}
	if a.prompter == nil {
		return "", missingArgs(usage)
	}
	name, err := a.prompter.Text(ctx, label)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: a name is required", domain.ErrValidation)
	}
	return name, nil
}

// ── Show / search ────────────────────────────────────────────────

func (a *cliApp) showRecipe(ctx context.Context, cmd *domain.Command) error {
	name, err := a.target(ctx, cmd, "Recipe name:", usageShowRecipe)
	if err != nil {
		return err
	}

	r, err := a.repo.FindRecipe(ctx, name)
	if err != nil {
		return err
	}
	a.out.PrintBlock(display.RenderRecipe(r))

	missing, err := a.repo.MissingReferences(ctx, r.Name)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		a.out.PrintHint(conversation.LineMissingReferences(missing))
	}
	return nil
}

func (a *cliApp) search(ctx context.Context, cmd *domain.Command) error {
	query, err := a.target(ctx, cmd, "Search for:", usageSearch)
	if err != nil {
		return err
	}

	res := a.repo.Search(ctx, query)
	if res.Empty() {
		a.say(ctx, conversation.LineNoMatches(query))
		return nil
	}
	if len(res.Recipes) > 0 {
		a.out.PrintHeading(fmt.Sprintf("Recipes (%d)", len(res.Recipes)))
		a.out.PrintBlock(display.RenderRecipes(res.Recipes))
	}
	if len(res.Ingredients) > 0 {
		a.out.PrintHeading(fmt.Sprintf("Ingredients (%d)", len(res.Ingredients)))
		a.out.PrintBlock(display.RenderIngredients(res.Ingredients))
	}
	return nil
}

func (a *cliApp) showHelp() {
	a.out.PrintHeading("Commands:")
	a.out.PrintLine("  1 / add recipe         Register a recipe (prompts for fields)")
	a.out.PrintLine("  2 / recipes            List recipes")
	a.out.PrintLine("  3 / remove recipe      Remove a recipe by name")
	a.out.PrintLine("  4 / add ingredient     Register an ingredient (prompts for fields)")
	a.out.PrintLine("  5 / ingredients        List ingredients")
	a.out.PrintLine("  6 / remove ingredient  Remove an ingredient by name")
	a.out.PrintLine("  7 / quit               Exit")
	a.out.PrintLine("  list                   List everything")
	a.out.PrintLine("  show recipe <name>     Show a recipe and which ingredients are missing")
	a.out.PrintLine("  find <text>            Search names, suppliers and descriptions")
	a.out.PrintLine("  help                   Show this message")
	a.out.PrintBlock("")
	a.out.PrintHeading("Literal arguments:")
	a.out.PrintLine("  " + usageAddIngredient)
	a.out.PrintLine("  " + usageAddRecipe)
	a.out.PrintHint("Type 'cancel' at any prompt to abort.")
}

// ── One-shot output ──────────────────────────────────────────────

// plainOutput prints unstyled lines for one-shot mode. Urgent lines go
// through errorf.
type plainOutput struct {
	printf func(format string, a ...interface{})
	errorf func(format string, a ...interface{})
}

func (p plainOutput) PrintChat(text string)    { p.printf("%s\n", text) }
func (p plainOutput) PrintHeading(text string) { p.printf("%s\n", text) }
func (p plainOutput) PrintLine(text string)    { p.printf("%s\n", strings.TrimPrefix(text, "  ")) }
func (p plainOutput) PrintHint(text string)    { p.printf("%s\n", text) }
func (p plainOutput) PrintUrgent(text string)  { p.errorf("%s\n", text) }
func (p plainOutput) PrintBlock(block string) {
	if block = strings.TrimRight(block, "\n"); block != "" {
		p.printf("%s\n", block)
	}
}
