package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// FieldSeparator splits literal command arguments.
const FieldSeparator = "|"

// SplitFields splits a literal payload on FieldSeparator and trims each
// field.
func SplitFields(payload string) []string {
	parts := strings.Split(payload, FieldSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// SplitList splits a comma-separated list, dropping blank entries.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseDecimal parses a price. A comma is accepted as the decimal
// separator when the input has no dot, so "15,99" reads as 15.99.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrValidation, s)
	}
	return v, nil
}

// ParseCount parses a whole stock count.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", domain.ErrValidation, s)
	}
	return v, nil
}

// ParseIngredientArgs reads "name | supplier | price | expiration | quantity".
// Range checks are left to the repository.
func ParseIngredientArgs(payload string) (domain.Ingredient, error) {
	f := SplitFields(payload)
	if len(f) != 5 {
		return domain.Ingredient{}, fmt.Errorf("%w: expected 5 fields (name | supplier | price | expiration | quantity), got %d", domain.ErrValidation, len(f))
	}

	price, err := ParseDecimal(f[2])
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("price: %w", err)
	}
	qty, err := ParseCount(f[4])
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("quantity: %w", err)
	}

	return domain.Ingredient{
		Name:       f[0],
		Supplier:   f[1],
		Price:      price,
		Expiration: f[3],
		Quantity:   qty,
	}, nil
}

// ParseRecipeArgs reads "name | ingredient, ingredient | description". The
// description may be omitted.
func ParseRecipeArgs(payload string) (domain.Recipe, error) {
	f := SplitFields(payload)
	if len(f) < 2 || len(f) > 3 {
		return domain.Recipe{}, fmt.Errorf("%w: expected 2 or 3 fields (name | ingredients | description), got %d", domain.ErrValidation, len(f))
	}

	r := domain.Recipe{
		Name:        f[0],
		Ingredients: SplitList(f[1]),
	}
	if len(f) == 3 {
		r.Description = f[2]
	}
	return r, nil
}
