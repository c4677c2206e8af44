package repository

import (
	"context"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// SearchResult groups the records matching a query.
type SearchResult struct {
	Recipes     []domain.Recipe
	Ingredients []domain.Ingredient
}

// Empty reports whether nothing matched.
func (s SearchResult) Empty() bool {
	return len(s.Recipes) == 0 && len(s.Ingredients) == 0
}

// Search returns recipes whose name, description or ingredient references
// contain the query, and ingredients whose name or supplier contain it.
// Matching ignores case. A blank query matches nothing.
func (r *Repository) Search(ctx context.Context, query string) SearchResult {
	q := domain.NameKey(query)
	if q == "" {
		return SearchResult{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	r.log.Debug("searching catalog for: %s", q)

	var out SearchResult
	for _, rec := range r.snap.Recipes {
		if recipeMatches(rec, q) {
			out.Recipes = append(out.Recipes, rec.Clone())
		}
	}
	for _, ing := range r.snap.Ingredients {
		if contains(ing.Name, q) || contains(ing.Supplier, q) {
			out.Ingredients = append(out.Ingredients, ing)
		}
	}
	return out
}

func recipeMatches(rec domain.Recipe, q string) bool {
	if contains(rec.Name, q) || contains(rec.Description, q) {
		return true
	}
	for _, ref := range rec.Ingredients {
		if contains(ref, q) {
			return true
		}
	}
	return false
}

func contains(s, q string) bool {
	return strings.Contains(domain.NameKey(s), q)
}
