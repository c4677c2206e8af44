// Package repository holds the in-memory catalog and enforces its rules:
// case-insensitive name uniqueness, required fields and positive amounts.
// Every successful mutation is persisted through a domain.SnapshotStore.
package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.CatalogStats = (*Repository)(nil)

// CorruptionPolicy decides what Open does with a data file that exists but
// cannot be read.
type CorruptionPolicy int

const (
	// CorruptReset logs a warning and starts from an empty catalog. The
	// unreadable content is replaced on the next save.
	CorruptReset CorruptionPolicy = iota
	// CorruptBackup moves the unreadable file aside, then starts empty.
	CorruptBackup
	// CorruptFail refuses to open.
	CorruptFail
)

// String returns the config name of the policy.
func (p CorruptionPolicy) String() string {
	switch p {
	case CorruptReset:
		return "reset"
	case CorruptBackup:
		return "backup"
	case CorruptFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseCorruptionPolicy maps a config value to a policy.
func ParseCorruptionPolicy(s string) (CorruptionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reset", "":
		return CorruptReset, nil
	case "backup":
		return CorruptBackup, nil
	case "fail":
		return CorruptFail, nil
	}
	return CorruptReset, fmt.Errorf("unknown corruption policy %q (want reset, backup or fail)", s)
}

// Option configures the repository.
type Option func(*Repository)

// WithCorruptionPolicy sets how Open recovers from an unreadable data file.
func WithCorruptionPolicy(p CorruptionPolicy) Option {
	return func(r *Repository) {
		r.onCorrupt = p
	}
}

// WithRollbackOnSaveFailure makes a mutation whose save fails restore the
// previous collection before returning the error. Off by default: the
// mutation stays in memory and disk catches up on the next successful save.
func WithRollbackOnSaveFailure(enabled bool) Option {
	return func(r *Repository) {
		r.rollback = enabled
	}
}

// Repository owns the recipe and ingredient collections. It depends only on
// the store interface. Safe for concurrent use, though the catalog assumes a
// single writer process.
type Repository struct {
	mu        sync.RWMutex
	snap      domain.Snapshot
	store     domain.SnapshotStore
	log       *logger.Logger
	onCorrupt CorruptionPolicy
	rollback  bool
}

// New creates a repository over an already loaded snapshot.
func New(snap domain.Snapshot, store domain.SnapshotStore, log *logger.Logger, opts ...Option) *Repository {
	snap = snap.Clone()
	snap.Normalize()
	r := &Repository{
		snap:      snap,
		store:     store,
		log:       log,
		onCorrupt: CorruptReset,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open loads the catalog through the store and applies the corruption
// policy. Read failures other than corruption are returned as is.
func Open(ctx context.Context, store domain.SnapshotStore, log *logger.Logger, opts ...Option) (*Repository, error) {
	r := New(domain.EmptySnapshot(), store, log, opts...)

	snap, err := store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrCorrupted):
		if err := r.recoverCorrupted(ctx, err); err != nil {
			return nil, err
		}
		snap = domain.EmptySnapshot()
	default:
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	snap.Normalize()
	r.snap = snap
	log.Info("catalog opened (recipes=%d, ingredients=%d)", len(snap.Recipes), len(snap.Ingredients))
	return r, nil
}

func (r *Repository) recoverCorrupted(ctx context.Context, loadErr error) error {
	switch r.onCorrupt {
	case CorruptFail:
		return fmt.Errorf("loading catalog: %w", loadErr)
	case CorruptBackup:
		q, ok := r.store.(domain.Quarantiner)
		if !ok {
			r.log.Warn("store cannot quarantine files; starting empty: %v", loadErr)
			return nil
		}
		dst, err := q.Quarantine(ctx)
		if err != nil {
			return fmt.Errorf("quarantining unreadable catalog: %w", err)
		}
		r.log.Warn("unreadable catalog moved to %s; starting empty", dst)
		return nil
	default:
		r.log.Warn("unreadable catalog discarded, starting empty: %v", loadErr)
		return nil
	}
}

// Counts returns the number of recipes and ingredients.
func (r *Repository) Counts() (recipes, ingredients int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snap.Recipes), len(r.snap.Ingredients)
}

// Snapshot returns a deep copy of the current catalog.
func (r *Repository) Snapshot() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap.Clone()
}

// commit persists the current snapshot. If the save fails and rollback is
// enabled, undo runs before the error is returned. Callers hold r.mu.
func (r *Repository) commit(ctx context.Context, what string, undo func()) error {
	err := r.store.Save(ctx, r.snap.Clone())
	if err == nil {
		return nil
	}
	if r.rollback {
		undo()
		r.log.Error("%s not saved, rolled back: %v", what, err)
	} else {
		r.log.Error("%s kept in memory but not saved: %v", what, err)
	}
	if !errors.Is(err, domain.ErrPersistence) {
		err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return err
}

// ── Ingredients ─────────────────────────────────────────────────

// CreateIngredient validates and appends a new ingredient, then saves the
// catalog. The name is trimmed before it is stored.
//
// If only the save fails and rollback is disabled, the stored ingredient is
// returned together with an error wrapping domain.ErrPersistence.
func (r *Repository) CreateIngredient(ctx context.Context, in domain.Ingredient) (domain.Ingredient, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.Ingredient{}, fmt.Errorf("%w: ingredient name is required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.findIngredient(in.Name); ok {
		return domain.Ingredient{}, fmt.Errorf("%w: ingredient %q", domain.ErrDuplicate, in.Name)
	}
	if err := validateIngredient(in); err != nil {
		return domain.Ingredient{}, err
	}

	prev := r.snap.Ingredients
	r.snap.Ingredients = append(prev[:len(prev):len(prev)], in)

	err := r.commit(ctx, "ingredient "+in.Name, func() { r.snap.Ingredients = prev })
	if err != nil && r.rollback {
		return domain.Ingredient{}, err
	}
	r.log.Info("ingredient created: %s (supplier=%q, qty=%d)", in.Name, in.Supplier, in.Quantity)
	return in, err
}

func validateIngredient(in domain.Ingredient) error {
	switch {
	case math.IsNaN(in.Price) || math.IsInf(in.Price, 0):
		return fmt.Errorf("%w: price must be a finite number", domain.ErrValidation)
	case in.Price <= 0:
		return fmt.Errorf("%w: price must be greater than zero", domain.ErrValidation)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be greater than zero", domain.ErrValidation)
	case strings.TrimSpace(in.Expiration) == "":
		return fmt.Errorf("%w: expiration is required", domain.ErrValidation)
	}
	return nil
}

// ListIngredients returns the ingredients in insertion order. Never touches
// the store.
func (r *Repository) ListIngredients(ctx context.Context) []domain.Ingredient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Ingredient, len(r.snap.Ingredients))
	copy(out, r.snap.Ingredients)
	r.log.Debug("listing ingredients, count=%d", len(out))
	return out
}

// FindIngredient returns the ingredient whose name matches, ignoring case.
func (r *Repository) FindIngredient(ctx context.Context, name string) (domain.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.findIngredient(name)
	if !ok {
		return domain.Ingredient{}, fmt.Errorf("ingredient %q: %w", strings.TrimSpace(name), domain.ErrNotFound)
	}
	return r.snap.Ingredients[i], nil
}

func (r *Repository) findIngredient(name string) (int, bool) {
	key := domain.NameKey(name)
	for i, ing := range r.snap.Ingredients {
		if domain.NameKey(ing.Name) == key {
			return i, true
		}
	}
	return -1, false
}

// RemoveIngredient removes every ingredient whose name matches, ignoring
// case, and saves the reduced catalog. Returns domain.ErrNotFound without
// saving when nothing matched.
func (r *Repository) RemoveIngredient(ctx context.Context, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.NameKey(name)
	prev := r.snap.Ingredients
	kept := make([]domain.Ingredient, 0, len(prev))
	for _, ing := range prev {
		if domain.NameKey(ing.Name) != key {
			kept = append(kept, ing)
		}
	}

	removed := len(prev) - len(kept)
	if removed == 0 {
		r.log.Debug("remove ingredient: %q not found", name)
		return 0, fmt.Errorf("ingredient %q: %w", strings.TrimSpace(name), domain.ErrNotFound)
	}

	r.snap.Ingredients = kept
	if err := r.commit(ctx, "ingredient removal", func() { r.snap.Ingredients = prev }); err != nil {
		if r.rollback {
			return 0, err
		}
		return removed, err
	}
	r.log.Info("ingredient removed: %s (%d record(s))", strings.TrimSpace(name), removed)
	return removed, nil
}

// ── Recipes ─────────────────────────────────────────────────────

// CreateRecipe validates and appends a new recipe, then saves the catalog.
// Ingredient references are free text: blank entries are dropped and the
// rest are kept in order without checking the ingredient collection.
//
// Save failures behave as in CreateIngredient.
func (r *Repository) CreateRecipe(ctx context.Context, in domain.Recipe) (domain.Recipe, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.Recipe{}, fmt.Errorf("%w: recipe name is required", domain.ErrValidation)
	}

	refs := make([]string, 0, len(in.Ingredients))
	for _, ref := range in.Ingredients {
		if ref = strings.TrimSpace(ref); ref != "" {
			refs = append(refs, ref)
		}
	}
	in.Ingredients = refs

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.findRecipe(in.Name); ok {
		return domain.Recipe{}, fmt.Errorf("%w: recipe %q", domain.ErrDuplicate, in.Name)
	}

	prev := r.snap.Recipes
	r.snap.Recipes = append(prev[:len(prev):len(prev)], in)

	err := r.commit(ctx, "recipe "+in.Name, func() { r.snap.Recipes = prev })
	if err != nil && r.rollback {
		return domain.Recipe{}, err
	}
	r.log.Info("recipe created: %s (%d ingredient(s))", in.Name, len(in.Ingredients))
	return in.Clone(), err
}

// ListRecipes returns the recipes in insertion order. Never touches the
// store.
func (r *Repository) ListRecipes(ctx context.Context) []domain.Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Recipe, len(r.snap.Recipes))
	for i, rec := range r.snap.Recipes {
		out[i] = rec.Clone()
	}
	r.log.Debug("listing recipes, count=%d", len(out))
	return out
}

// FindRecipe returns the recipe whose name matches, ignoring case.
func (r *Repository) FindRecipe(ctx context.Context, name string) (domain.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.findRecipe(name)
	if !ok {
		return domain.Recipe{}, fmt.Errorf("recipe %q: %w", strings.TrimSpace(name), domain.ErrNotFound)
	}
	return r.snap.Recipes[i].Clone(), nil
}

func (r *Repository) findRecipe(name string) (int, bool) {
	key := domain.NameKey(name)
	for i, rec := range r.snap.Recipes {
		if domain.NameKey(rec.Name) == key {
			return i, true
		}
	}
	return -1, false
}

// RemoveRecipe removes every recipe whose name matches, ignoring case, and
// saves the reduced catalog. Returns domain.ErrNotFound without saving when
// nothing matched.
func (r *Repository) RemoveRecipe(ctx context.Context, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.NameKey(name)
	prev := r.snap.Recipes
	kept := make([]domain.Recipe, 0, len(prev))
	for _, rec := range prev {
		if domain.NameKey(rec.Name) != key {
			kept = append(kept, rec)
		}
	}

	removed := len(prev) - len(kept)
	if removed == 0 {
		r.log.Debug("remove recipe: %q not found", name)
		return 0, fmt.Errorf("recipe %q: %w", strings.TrimSpace(name), domain.ErrNotFound)
	}

	r.snap.Recipes = kept
	if err := r.commit(ctx, "recipe removal", func() { r.snap.Recipes = prev }); err != nil {
		if r.rollback {
			return 0, err
		}
		return removed, err
	}
	r.log.Info("recipe removed: %s (%d record(s))", strings.TrimSpace(name), removed)
	return removed, nil
}

// MissingReferences lists the ingredient names a recipe mentions that are
// not in the ingredient collection. Purely informational.
func (r *Repository) MissingReferences(ctx context.Context, recipeName string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.findRecipe(recipeName)
	if !ok {
		return nil, fmt.Errorf("recipe %q: %w", strings.TrimSpace(recipeName), domain.ErrNotFound)
	}

	var missing []string
	for _, ref := range r.snap.Recipes[i].Ingredients {
		if _, ok := r.findIngredient(ref); !ok {
			missing = append(missing, ref)
		}
	}
	return missing, nil
}
