package conversation

import (
	"context"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// CancelWord aborts any prompt.
const CancelWord = "cancel"

// LineSource blocks until the next input line is available.
type LineSource func(ctx context.Context) (string, error)

// ChanSource reads lines from ch. A closed channel yields
// domain.ErrInputClosed.
func ChanSource(ch <-chan string) LineSource {
	return func(ctx context.Context) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case line, ok := <-ch:
			if !ok {
				return "", domain.ErrInputClosed
			}
			return line, nil
		}
	}
}

// Prompter collects field values one line at a time. Numeric prompts keep
// asking until the input parses, so a typo never throws away the fields
// already entered.
type Prompter struct {
	next    LineSource
	printFn PrintFunc
	log     *logger.Logger
}

// NewPrompter creates a prompter that prints labels with printFn and reads
// answers from next.
func NewPrompter(next LineSource, printFn PrintFunc, log *logger.Logger) *Prompter {
	return &Prompter{next: next, printFn: printFn, log: log}
}

func (p *Prompter) ask(ctx context.Context, label string) (string, error) {
	p.printFn("%s", label)
	line, err := p.next(ctx)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, CancelWord) {
		return "", domain.ErrCancelled
	}
	return line, nil
}

// Text asks for a free-text value. Blank answers are returned as is.
func (p *Prompter) Text(ctx context.Context, label string) (string, error) {
	return p.ask(ctx, label)
}

// List asks for a comma-separated list.
func (p *Prompter) List(ctx context.Context, label string) ([]string, error) {
	line, err := p.ask(ctx, label)
	if err != nil {
		return nil, err
	}
	return SplitList(line), nil
}

// Float asks for a decimal number until one parses.
func (p *Prompter) Float(ctx context.Context, label string) (float64, error) {
	for {
		line, err := p.ask(ctx, label)
		if err != nil {
			return 0, err
		}
		v, err := ParseDecimal(line)
		if err == nil {
			return v, nil
		}
		p.log.Debug("reprompting %q: %v", label, err)
		p.printFn("Invalid number %q. Try again (e.g. 15.99), or type '%s'.", line, CancelWord)
	}
}

// Int asks for a whole number until one parses.
func (p *Prompter) Int(ctx context.Context, label string) (int, error) {
	for {
		line, err := p.ask(ctx, label)
		if err != nil {
			return 0, err
		}
		v, err := ParseCount(line)
		if err == nil {
			return v, nil
		}
		p.log.Debug("reprompting %q: %v", label, err)
		p.printFn("Invalid whole number %q. Try again (e.g. 50), or type '%s'.", line, CancelWord)
	}
}

// Ingredient collects every ingredient field. Range checks are left to the
// repository.
func (p *Prompter) Ingredient(ctx context.Context) (domain.Ingredient, error) {
	var (
		in  domain.Ingredient
		err error
	)
	if in.Name, err = p.Text(ctx, "Ingredient name:"); err != nil {
		return in, err
	}
	if in.Supplier, err = p.Text(ctx, "Supplier:"); err != nil {
		return in, err
	}
	if in.Price, err = p.Float(ctx, "Price:"); err != nil {
		return in, err
	}
	if in.Expiration, err = p.Text(ctx, "Expiration date (e.g. 12/2025):"); err != nil {
		return in, err
	}
	if in.Quantity, err = p.Int(ctx, "Quantity in stock:"); err != nil {
		return in, err
	}
	return in, nil
}

// Recipe collects every recipe field.
func (p *Prompter) Recipe(ctx context.Context) (domain.Recipe, error) {
	var (
		r   domain.Recipe
		err error
	)
	if r.Name, err = p.Text(ctx, "Recipe name:"); err != nil {
		return r, err
	}
	if r.Ingredients, err = p.List(ctx, "Ingredients (comma-separated):"); err != nil {
		return r, err
	}
	if r.Description, err = p.Text(ctx, "Description:"); err != nil {
		return r, err
	}
	return r, nil
}
