package conversation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// lines.go centralises every user-facing result string.

// ── Greeting / Global ────────────────────────────────────────────

func LineWelcome() string {
	return "Welcome to the brewery catalog."
}

func LineBye() string {
	return "Cheers."
}

func LineUnknown(input string) string {
	return fmt.Sprintf("Unknown command: %s. Type 'help' for commands.", input)
}

func LineCancelled() string {
	return "Cancelled. Nothing was saved."
}

func LineMissingArgs(usage string) string {
	return "Missing arguments. Usage: " + usage
}

// ── Results ──────────────────────────────────────────────────────

func LineIngredientCreated(in domain.Ingredient) string {
	return fmt.Sprintf("Ingredient %q registered (%d in stock).", in.Name, in.Quantity)
}

func LineRecipeCreated(r domain.Recipe) string {
	if len(r.Ingredients) == 0 {
		return fmt.Sprintf("Recipe %q registered.", r.Name)
	}
	return fmt.Sprintf("Recipe %q registered with %s.", r.Name, strings.Join(r.Ingredients, ", "))
}

func LineRemoved(kind, name string, n int) string {
	if n == 1 {
		return fmt.Sprintf("%s %q removed.", capitalize(kind), name)
	}
	return fmt.Sprintf("%d %ss named %q removed.", n, kind, name)
}

func LineNoIngredients() string {
	return "No ingredients registered."
}

func LineNoRecipes() string {
	return "No recipes registered."
}

func LineNoMatches(query string) string {
	return fmt.Sprintf("Nothing matches %q.", query)
}

func LineKeptInMemory() string {
	return "The change is kept in memory and will be written by the next successful save."
}

func LineMissingReferences(refs []string) string {
	return "Not in stock: " + strings.Join(refs, ", ")
}

// ── Errors ───────────────────────────────────────────────────────

// LineError describes an operation failure. Not-found is informational and
// reads as such.
func LineError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "Not found: " + trimSentinel(err, domain.ErrNotFound)
	case errors.Is(err, domain.ErrDuplicate):
		return "Already registered: " + trimSentinel(err, domain.ErrDuplicate)
	case errors.Is(err, domain.ErrValidation):
		return "Invalid input: " + trimSentinel(err, domain.ErrValidation)
	case errors.Is(err, domain.ErrCancelled):
		return LineCancelled()
	case errors.Is(err, domain.ErrPersistence):
		return "Not saved to disk: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// trimSentinel drops the sentinel's own text from a wrapped message so
// "invalid input: price must be..." reads as "price must be...".
func trimSentinel(err, sentinel error) string {
	msg := err.Error()
	s := sentinel.Error()
	msg = strings.ReplaceAll(msg, s+": ", "")
	msg = strings.TrimSuffix(msg, ": "+s)
	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
