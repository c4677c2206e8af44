// Package domain defines the core types and interfaces for the brewery
// catalog. All other packages depend on domain; domain depends on nothing
// but encoding/json and the text-casing tables.
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ingredient is a stock item used in brewing.
type Ingredient struct {
	Name       string  `json:"nome"`
	Supplier   string  `json:"fornecedor"`
	Price      float64 `json:"preco"`
	Expiration string  `json:"validade"` // free text, e.g. "12/2025"
	Quantity   int     `json:"quantidade"`
}

// UnmarshalJSON decodes an ingredient, also accepting a quantity written as
// an integral float such as 50.0 or 5e1. Fractional or out-of-range
// quantities are rejected.
func (in *Ingredient) UnmarshalJSON(data []byte) error {
	type plain Ingredient
	aux := struct {
		*plain
		Quantity json.Number `json:"quantidade"`
	}{plain: (*plain)(in)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Quantity == "" {
		return nil
	}
	q, err := parseQuantity(aux.Quantity)
	if err != nil {
		return err
	}
	in.Quantity = q
	return nil
}

func parseQuantity(n json.Number) (int, error) {
	if v, err := strconv.ParseInt(n.String(), 10, strconv.IntSize); err == nil {
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= -math.MinInt {
		return 0, fmt.Errorf("quantidade %s is not a whole number", n)
	}
	return int(f), nil
}

// Recipe is a brew recipe. Ingredients holds plain ingredient names and is
// never checked against the ingredient collection.
type Recipe struct {
	Name        string   `json:"nome"`
	Ingredients []string `json:"ingredientes"`
	Description string   `json:"descricao"`
}

// Snapshot is the full persisted state and the unit of every write.
type Snapshot struct {
	Recipes     []Recipe     `json:"receitas"`
	Ingredients []Ingredient `json:"ingredientes"`
}

// EmptySnapshot returns a snapshot with empty, non-nil collections.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Recipes:     []Recipe{},
		Ingredients: []Ingredient{},
	}
}

// Normalize replaces nil slices with empty ones so the snapshot never
// serializes null collections.
func (s *Snapshot) Normalize() {
	if s.Recipes == nil {
		s.Recipes = []Recipe{}
	}
	if s.Ingredients == nil {
		s.Ingredients = []Ingredient{}
	}
	for i := range s.Recipes {
		if s.Recipes[i].Ingredients == nil {
			s.Recipes[i].Ingredients = []string{}
		}
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Recipes:     make([]Recipe, len(s.Recipes)),
		Ingredients: make([]Ingredient, len(s.Ingredients)),
	}
	for i, r := range s.Recipes {
		out.Recipes[i] = r.Clone()
	}
	copy(out.Ingredients, s.Ingredients)
	return out
}

// Clone returns a copy of the recipe with its own reference slice.
func (r Recipe) Clone() Recipe {
	refs := make([]string, len(r.Ingredients))
	copy(refs, r.Ingredients)
	r.Ingredients = refs
	return r
}

// NameKey returns the comparison key for record names: trimmed and
// lowercased. Two names collide when their keys are equal.
func NameKey(name string) string {
	// A Caser carries state, so build one per call instead of sharing it.
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// SameName reports whether two record names collide.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}
