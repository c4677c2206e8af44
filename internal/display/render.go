package display

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#52525b"))

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#bbf7d0")).
				Bold(true).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8")).
			Padding(0, 1)

	tableNumberStyle = tableCellStyle.
				Align(lipgloss.Right)
)

// FormatPrice renders a price with two decimals.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// RenderIngredients draws the ingredient inventory as a table in stored
// order.
func RenderIngredients(items []domain.Ingredient) string {
	rows := make([][]string, 0, len(items))
	for _, in := range items {
		rows = append(rows, []string{
			in.Name,
			in.Supplier,
			FormatPrice(in.Price),
			in.Expiration,
			strconv.Itoa(in.Quantity),
		})
	}

	return newTable(2, 4).
		Headers("Name", "Supplier", "Price", "Expiration", "Qty").
		Rows(rows...).
		String()
}

// RenderRecipes draws the recipe list as a table in stored order.
func RenderRecipes(items []domain.Recipe) string {
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		rows = append(rows, []string{
			r.Name,
			strings.Join(r.Ingredients, ", "),
			r.Description,
		})
	}

	return newTable().
		Headers("Name", "Ingredients", "Description").
		Rows(rows...).
		String()
}

// RenderRecipe draws a single recipe as label/value lines.
func RenderRecipe(r domain.Recipe) string {
	ingredients := strings.Join(r.Ingredients, ", ")
	if ingredients == "" {
		ingredients = "none"
	}
	description := r.Description
	if description == "" {
		description = "none"
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("  " + r.Name))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("  Ingredients: ") + primaryStyle.Render(ingredients))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("  Description: ") + primaryStyle.Render(description))
	return b.String()
}

// newTable returns a bordered table. Columns listed in numeric are right
// aligned.
func newTable(numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case right[col]:
				return tableNumberStyle
			default:
				return tableCellStyle
			}
		})
}
