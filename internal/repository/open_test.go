package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

// brokenStore fails every Load with a fixed error.
type brokenStore struct {
	err error
}

func (s brokenStore) Load(ctx context.Context) (domain.Snapshot, error) {
	return domain.EmptySnapshot(), s.err
}

func (s brokenStore) Save(ctx context.Context, snap domain.Snapshot) error { return nil }

func corruptFileStore(t *testing.T) (*storage.FileStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, dataPath, []byte(`{"receitas": [`), 0o644))
	return storage.NewFileStore(dataPath, logger.Nop(), storage.WithFs(fs)), fs
}

func TestOpenCorruptReset(t *testing.T) {
	store, fs := corruptFileStore(t)
	ctx := context.Background()

	repo, err := Open(ctx, store, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, domain.EmptySnapshot(), repo.Snapshot())

	// The unreadable file is only replaced by the next save.
	exists, _ := afero.Exists(fs, dataPath)
	assert.True(t, exists)

	_, err = repo.CreateRecipe(ctx, domain.Recipe{Name: "IPA"})
	require.NoError(t, err)
	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Recipes, 1)
}

func TestOpenCorruptBackup(t *testing.T) {
	store, fs := corruptFileStore(t)

	repo, err := Open(context.Background(), store, logger.Nop(), WithCorruptionPolicy(CorruptBackup))
	require.NoError(t, err)
	assert.Equal(t, domain.EmptySnapshot(), repo.Snapshot())

	exists, _ := afero.Exists(fs, dataPath)
	assert.False(t, exists, "unreadable file should have been moved aside")

	matches, err := afero.Glob(fs, dataPath+".corrupt-*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	moved, err := afero.ReadFile(fs, matches[0])
	require.NoError(t, err)
	assert.Equal(t, `{"receitas": [`, string(moved))
}

func TestOpenCorruptBackupWithoutQuarantiner(t *testing.T) {
	store := brokenStore{err: domain.ErrCorrupted}

	repo, err := Open(context.Background(), store, logger.Nop(), WithCorruptionPolicy(CorruptBackup))
	require.NoError(t, err)
	assert.Equal(t, domain.EmptySnapshot(), repo.Snapshot())
}

func TestOpenCorruptFail(t *testing.T) {
	store, _ := corruptFileStore(t)

	repo, err := Open(context.Background(), store, logger.Nop(), WithCorruptionPolicy(CorruptFail))
	assert.ErrorIs(t, err, domain.ErrCorrupted)
	assert.Nil(t, repo)
}

func TestOpenPropagatesReadErrors(t *testing.T) {
	readErr := errors.New("permission denied")
	store := brokenStore{err: errors.Join(domain.ErrPersistence, readErr)}

	_, err := Open(context.Background(), store, logger.Nop())
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, readErr)
}

func TestParseCorruptionPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    CorruptionPolicy
		wantErr bool
	}{
		{"reset", CorruptReset, false},
		{"", CorruptReset, false},
		{"BACKUP", CorruptBackup, false},
		{" fail ", CorruptFail, false},
		{"ignore", CorruptReset, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCorruptionPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}
