// Package conversation turns raw input lines into catalog commands and
// collects field values from the user.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.CommandParser = (*KeywordParser)(nil)

// KeywordParser matches input lines to commands using keywords and simple
// patterns. English and Portuguese keywords are both accepted.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

// patternRule maps a regex to a command. Rules with a payload capture group
// pass the captured text through as Command.Payload.
type patternRule struct {
	regex   *regexp.Regexp
	command domain.CommandType
}

// menuChoices mirrors the numbered brewery menu.
var menuChoices = map[string]domain.CommandType{
	"1": domain.CommandAddRecipe,
	"2": domain.CommandListRecipes,
	"3": domain.CommandRemoveRecipe,
	"4": domain.CommandAddIngredient,
	"5": domain.CommandListIngredients,
	"6": domain.CommandRemoveIngredient,
	"7": domain.CommandQuit,
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	const (
		ingredient = `(?:ingredients?|ingredientes?|ing)`
		recipe     = `(?:recipes?|receitas?|rec)`
		add        = `(?:add|new|create|cadastrar|novo|nova)`
		remove     = `(?:remove|rm|del|delete|excluir|remover)`
		rest       = `(?:\s+(.*))?$`
	)

	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(help|h|\?|ajuda)$`), domain.CommandHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q|sair)$`), domain.CommandQuit},
		{regexp.MustCompile(`(?i)^(list|ls|all)$`), domain.CommandListAll},
		{regexp.MustCompile(`(?i)^(?:(?:list|ls|listar)\s+)?` + ingredient + `$`), domain.CommandListIngredients},
		{regexp.MustCompile(`(?i)^(?:(?:list|ls|listar)\s+)?` + recipe + `$`), domain.CommandListRecipes},
		{regexp.MustCompile(`(?i)^` + add + `\s+` + ingredient + rest), domain.CommandAddIngredient},
		{regexp.MustCompile(`(?i)^` + add + `\s+` + recipe + rest), domain.CommandAddRecipe},
		{regexp.MustCompile(`(?i)^` + remove + `\s+` + ingredient + rest), domain.CommandRemoveIngredient},
		{regexp.MustCompile(`(?i)^` + remove + `\s+` + recipe + rest), domain.CommandRemoveRecipe},
		{regexp.MustCompile(`(?i)^(?:show|ver|mostrar)\s+` + recipe + rest), domain.CommandShowRecipe},
		{regexp.MustCompile(`(?i)^(?:find|search|buscar)` + rest), domain.CommandSearch},
	}
	return p
}

// Parse converts an input line into a command.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Command{Type: domain.CommandUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	if cmd, ok := menuChoices[trimmed]; ok {
		return &domain.Command{Type: cmd}, nil
	}

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched command: %s", rule.command)
		var payload string
		if rule.hasPayload() && len(m) > 1 {
			payload = strings.TrimSpace(m[len(m)-1])
		}
		return &domain.Command{Type: rule.command, Payload: payload}, nil
	}

	p.log.Debug("no match, returning unknown command")
	return &domain.Command{Type: domain.CommandUnknown, Payload: trimmed}, nil
}

// hasPayload reports whether the rule's last group carries arguments
// rather than an alternation of keywords.
func (r patternRule) hasPayload() bool {
	switch r.command {
	case domain.CommandAddIngredient, domain.CommandAddRecipe,
		domain.CommandRemoveIngredient, domain.CommandRemoveRecipe,
		domain.CommandShowRecipe, domain.CommandSearch:
		return true
	}
	return false
}
