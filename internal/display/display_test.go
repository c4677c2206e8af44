package display

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

type fixedStats struct{ recipes, ingredients int }

func (s *fixedStats) Counts() (int, int) { return s.recipes, s.ingredients }

func TestRenderIngredients(t *testing.T) {
	out := RenderIngredients([]domain.Ingredient{
		{Name: "Lúpulo Cascade", Supplier: "Fornecedor B", Price: 15.99, Expiration: "12/2025", Quantity: 50},
		{Name: "Malte Pilsen", Supplier: "Fornecedor A", Price: 10, Expiration: "01/2026", Quantity: 100},
	})

	for _, want := range []string{"Name", "Supplier", "Lúpulo Cascade", "15.99", "10.00", "12/2025", "100"} {
		assert.Contains(t, out, want)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Less(t, strings.Index(out, "Lúpulo Cascade"), strings.Index(out, "Malte Pilsen"), "stored order kept")
	assert.GreaterOrEqual(t, len(lines), 4)
}

func TestRenderRecipes(t *testing.T) {
	out := RenderRecipes([]domain.Recipe{
		{Name: "APA Tropical", Ingredients: []string{"Lúpulo Cascade", "Malte Vienna"}, Description: "Cítrica"},
	})
	assert.Contains(t, out, "APA Tropical")
	assert.Contains(t, out, "Lúpulo Cascade, Malte Vienna")
	assert.Contains(t, out, "Cítrica")
}

func TestRenderRecipeEmptyFields(t *testing.T) {
	out := RenderRecipe(domain.Recipe{Name: "Stout"})
	assert.Contains(t, out, "Stout")
	assert.Equal(t, 2, strings.Count(out, "none"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "15.99", FormatPrice(15.99))
	assert.Equal(t, "0.10", FormatPrice(0.1))
}

func TestRenderBannerCentres(t *testing.T) {
	out := renderBanner(200)
	first := strings.Split(out, "\n")[0]
	assert.True(t, strings.HasPrefix(first, "     "), "banner is padded on wide terminals")

	narrow := renderBanner(10)
	assert.Equal(t, strings.Count(bannerRaw, "\n"), strings.Count(narrow, "\n"))
}

func TestModelTracksCounts(t *testing.T) {
	stats := &fixedStats{recipes: 1, ingredients: 0}
	inputCh := make(chan string, 4)
	m := newModel(stats, "cervejaria.json", textinput.New(), inputCh, make(chan struct{}))

	bar := m.renderBar()
	assert.Contains(t, bar, "cervejaria.json")
	assert.Contains(t, bar, "1 recipe")
	assert.Contains(t, bar, "no ingredients")

	stats.recipes, stats.ingredients = 3, 2
	next, _ := m.Update(tickMsg{})
	updated := next.(model)
	assert.Equal(t, "OttoBrew: 3 recipes, 2 ingredients", updated.titleStr())
	assert.Contains(t, updated.renderBar(), "3 recipes")
}

func TestModelForwardsInput(t *testing.T) {
	inputCh := make(chan string, 4)
	ti := textinput.New()
	ti.Focus()
	m := newModel(nil, "mem", ti, inputCh, make(chan struct{}))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("list")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, inputCh, 2)
	assert.Equal(t, "list", <-inputCh)
	assert.Equal(t, "", <-inputCh)
}
