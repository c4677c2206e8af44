package repository

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

const dataPath = "/brew/cervejaria.json"

func setupRepo(t *testing.T, opts ...Option) (*Repository, *storage.MemoryStore, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	return New(domain.EmptySnapshot(), store, log, opts...), store, context.Background()
}

func malte(name string) domain.Ingredient {
	return domain.Ingredient{Name: name, Supplier: "Fornecedor A", Price: 10.5, Expiration: "01/2026", Quantity: 100}
}

func TestCreateIngredientPersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := logger.Nop()
	ctx := context.Background()

	repo, err := Open(ctx, storage.NewFileStore(dataPath, log, storage.WithFs(fs)), log)
	require.NoError(t, err)

	created, err := repo.CreateIngredient(ctx, domain.Ingredient{
		Name: "  Malte Pilsen ", Supplier: "Fornecedor A", Price: 10.5, Expiration: "01/2026", Quantity: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "Malte Pilsen", created.Name, "name is stored trimmed")

	list := repo.ListIngredients(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])

	// A fresh repository over the same file sees the record.
	reopened, err := Open(ctx, storage.NewFileStore(dataPath, log, storage.WithFs(fs)), log)
	require.NoError(t, err)
	found, err := reopened.FindIngredient(ctx, "malte pilsen")
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestCreateIngredientDuplicateIgnoresCase(t *testing.T) {
	repo, store, ctx := setupRepo(t)

	_, err := repo.CreateIngredient(ctx, malte("Malte"))
	require.NoError(t, err)

	_, err = repo.CreateIngredient(ctx, malte("malte"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = repo.CreateIngredient(ctx, malte(" MALTE "))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.Len(t, repo.ListIngredients(ctx), 1)
	assert.Equal(t, 1, store.Saves(), "rejected creates must not save")
}

func TestCreateIngredientValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Ingredient)
	}{
		{"blank name", func(in *domain.Ingredient) { in.Name = "   " }},
		{"zero price", func(in *domain.Ingredient) { in.Price = 0 }},
		{"negative price", func(in *domain.Ingredient) { in.Price = -3.2 }},
		{"NaN price", func(in *domain.Ingredient) { in.Price = math.NaN() }},
		{"infinite price", func(in *domain.Ingredient) { in.Price = math.Inf(1) }},
		{"zero quantity", func(in *domain.Ingredient) { in.Quantity = 0 }},
		{"negative quantity", func(in *domain.Ingredient) { in.Quantity = -1 }},
		{"blank expiration", func(in *domain.Ingredient) { in.Expiration = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store, ctx := setupRepo(t)
			in := malte("Malte Pilsen")
			tt.mutate(&in)

			_, err := repo.CreateIngredient(ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, repo.ListIngredients(ctx))
			assert.Zero(t, store.Saves())
		})
	}
}

func TestCreateIngredientEmptySupplierAllowed(t *testing.T) {
	repo, _, ctx := setupRepo(t)
	in := malte("Levedura US-05")
	in.Supplier = ""

	_, err := repo.CreateIngredient(ctx, in)
	assert.NoError(t, err)
}

func TestRemoveIngredientNotFoundSkipsSave(t *testing.T) {
	repo, store, ctx := setupRepo(t)
	_, err := repo.CreateIngredient(ctx, malte("Malte"))
	require.NoError(t, err)
	saves := store.Saves()

	n, err := repo.RemoveIngredient(ctx, "NONEXISTENT")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, n)
	assert.Equal(t, saves, store.Saves(), "not-found removal must not persist")
	assert.Len(t, repo.ListIngredients(ctx), 1)
}

func TestRemoveIngredientRemovesAllMatches(t *testing.T) {
	// Case variants can only coexist if they came from an edited file.
	snap := domain.EmptySnapshot()
	snap.Ingredients = []domain.Ingredient{malte("Malte"), malte("Lúpulo"), malte("MALTE")}
	store := storage.NewMemoryStore(logger.Nop())
	repo := New(snap, store, logger.Nop())
	ctx := context.Background()

	n, err := repo.RemoveIngredient(ctx, "malte")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list := repo.ListIngredients(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "Lúpulo", list[0].Name)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, saved.Ingredients)
}

func TestBreweryScenario(t *testing.T) {
	repo, store, ctx := setupRepo(t)

	_, err := repo.CreateIngredient(ctx, domain.Ingredient{
		Name: "Lúpulo Cascade", Supplier: "Fornecedor B", Price: 15.99, Expiration: "12/2025", Quantity: 50,
	})
	require.NoError(t, err)

	_, err = repo.CreateRecipe(ctx, domain.Recipe{
		Name:        "APA Tropical",
		Ingredients: []string{"Lúpulo Cascade", "Malte Vienna"},
		Description: "Receita refrescante",
	})
	require.NoError(t, err)

	assert.Len(t, repo.ListIngredients(ctx), 1)
	assert.Len(t, repo.ListRecipes(ctx), 1)

	n, err := repo.RemoveIngredient(ctx, "lúpulo cascade")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, repo.ListIngredients(ctx), 0)

	// The recipe keeps its now-dangling reference.
	rec, err := repo.FindRecipe(ctx, "apa tropical")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lúpulo Cascade", "Malte Vienna"}, rec.Ingredients)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, repo.Snapshot(), saved)
}

func TestCreateRecipe(t *testing.T) {
	repo, store, ctx := setupRepo(t)

	created, err := repo.CreateRecipe(ctx, domain.Recipe{Name: "IPA Clássica", Ingredients: []string{" Malte Pilsen ", "", "Lúpulo Amarillo"}, Description: "Uma IPA equilibrada e aromática."})
	require.NoError(t, err)
	assert.Equal(t, []string{"Malte Pilsen", "Lúpulo Amarillo"}, created.Ingredients)

	empty, err := repo.CreateRecipe(ctx, domain.Recipe{Name: "Água"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, empty.Ingredients)

	_, err = repo.CreateRecipe(ctx, domain.Recipe{Name: "ipa clássica"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = repo.CreateRecipe(ctx, domain.Recipe{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Len(t, repo.ListRecipes(ctx), 2)
	assert.Equal(t, 2, store.Saves())
}

func TestRemoveRecipe(t *testing.T) {
	repo, store, ctx := setupRepo(t)
	_, err := repo.CreateRecipe(ctx, domain.Recipe{Name: "IPA Clássica"})
	require.NoError(t, err)

	_, err = repo.RemoveRecipe(ctx, "Stout")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, store.Saves())

	n, err := repo.RemoveRecipe(ctx, "IPA CLÁSSICA")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, repo.ListRecipes(ctx))
	assert.Equal(t, 2, store.Saves())
}

func TestListReturnsCopies(t *testing.T) {
	repo, _, ctx := setupRepo(t)
	_, err := repo.CreateRecipe(ctx, domain.Recipe{Name: "IPA", Ingredients: []string{"Malte"}})
	require.NoError(t, err)

	list := repo.ListRecipes(ctx)
	list[0].Ingredients[0] = "changed"

	rec, err := repo.FindRecipe(ctx, "IPA")
	require.NoError(t, err)
	assert.Equal(t, "Malte", rec.Ingredients[0])
}

func TestSaveFailureKeepsMutationByDefault(t *testing.T) {
	repo, store, ctx := setupRepo(t)
	boom := errors.New("disk full")

	store.FailNextSave(boom)
	created, err := repo.CreateIngredient(ctx, malte("Malte"))
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Malte", created.Name)
	assert.Len(t, repo.ListIngredients(ctx), 1, "in-memory append is not reverted")

	saved, _ := store.Load(ctx)
	assert.Empty(t, saved.Ingredients, "memory and disk diverge until the next save")

	// The next successful save converges them.
	_, err = repo.CreateRecipe(ctx, domain.Recipe{Name: "IPA"})
	require.NoError(t, err)
	saved, _ = store.Load(ctx)
	assert.Equal(t, repo.Snapshot(), saved)
}

func TestSaveFailureWithRollback(t *testing.T) {
	repo, store, ctx := setupRepo(t, WithRollbackOnSaveFailure(true))
	_, err := repo.CreateIngredient(ctx, malte("Malte"))
	require.NoError(t, err)
	boom := errors.New("permission denied")

	store.FailNextSave(boom)
	_, err = repo.CreateIngredient(ctx, malte("Lúpulo"))
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Len(t, repo.ListIngredients(ctx), 1)

	store.FailNextSave(boom)
	_, err = repo.RemoveIngredient(ctx, "malte")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Len(t, repo.ListIngredients(ctx), 1)

	store.FailNextSave(boom)
	_, err = repo.CreateRecipe(ctx, domain.Recipe{Name: "IPA"})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Empty(t, repo.ListRecipes(ctx))

	saved, _ := store.Load(ctx)
	assert.Equal(t, repo.Snapshot(), saved)
}

func TestMissingReferences(t *testing.T) {
	repo, _, ctx := setupRepo(t)
	_, err := repo.CreateIngredient(ctx, malte("Malte Pilsen"))
	require.NoError(t, err)
	_, err = repo.CreateRecipe(ctx, domain.Recipe{Name: "IPA", Ingredients: []string{"malte pilsen", "Lúpulo Amarillo"}})
	require.NoError(t, err)

	missing, err := repo.MissingReferences(ctx, "ipa")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lúpulo Amarillo"}, missing)

	_, err = repo.MissingReferences(ctx, "stout")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearch(t *testing.T) {
	repo, _, ctx := setupRepo(t)
	_, err := repo.CreateIngredient(ctx, domain.Ingredient{Name: "Lúpulo Cascade", Supplier: "HopCo", Price: 15.99, Expiration: "12/2025", Quantity: 50})
	require.NoError(t, err)
	_, err = repo.CreateIngredient(ctx, malte("Malte Pilsen"))
	require.NoError(t, err)
	_, err = repo.CreateRecipe(ctx, domain.Recipe{Name: "APA Tropical", Ingredients: []string{"Lúpulo Cascade"}, Description: "Receita refrescante"})
	require.NoError(t, err)

	tests := []struct {
		query           string
		wantRecipes     int
		wantIngredients int
	}{
		{"CASCADE", 1, 1},
		{"hopco", 0, 1},
		{"refrescante", 1, 0},
		{"malte", 0, 1},
		{"stout", 0, 0},
		{"  ", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := repo.Search(ctx, tt.query)
			assert.Len(t, res.Recipes, tt.wantRecipes)
			assert.Len(t, res.Ingredients, tt.wantIngredients)
			assert.Equal(t, tt.wantRecipes+tt.wantIngredients == 0, res.Empty())
		})
	}
}

func TestCounts(t *testing.T) {
	repo, _, ctx := setupRepo(t)
	_, _ = repo.CreateIngredient(ctx, malte("Malte"))
	_, _ = repo.CreateRecipe(ctx, domain.Recipe{Name: "IPA"})
	_, _ = repo.CreateRecipe(ctx, domain.Recipe{Name: "Stout"})

	recipes, ingredients := repo.Counts()
	assert.Equal(t, 2, recipes)
	assert.Equal(t, 1, ingredients)
}
