package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/string-analyzer/internal/domain/analysis"
)

func newRecord(t *testing.T, value string) *domain.AnalyzedString {
	t.Helper()
	p, err := domain.Analyze(value)
	require.NoError(t, err)
	return &domain.AnalyzedString{
		ID:         domain.ID(p.SHA256Hash),
		Value:      value,
		Properties: p,
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStringRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewStringRepository()

	rec := newRecord(t, "racecar")
	require.NoError(t, repo.Insert(ctx, rec))

	got, err := repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	got, err = repo.FindByValue(ctx, "racecar")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	missing, err := repo.FindByValue(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.DeleteByID(ctx, rec.ID))
	got, err = repo.FindByValue(ctx, "racecar")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.DeleteByID(ctx, rec.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStringRepositoryConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewStringRepository()

	require.NoError(t, repo.Insert(ctx, newRecord(t, "abc")))

	err := repo.Insert(ctx, newRecord(t, " abc "))
	assert.True(t, errors.Is(err, domain.ErrConflict), "same id")

	dupValue := newRecord(t, "abc")
	dupValue.ID = "other"
	err = repo.Insert(ctx, dupValue)
	assert.True(t, errors.Is(err, domain.ErrConflict), "same value")
}

func TestStringRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewStringRepository()
	for _, v := range []string{"one", "two", "three", "four"} {
		require.NoError(t, repo.Insert(ctx, newRecord(t, v)))
	}
	require.NoError(t, repo.DeleteByID(ctx, domain.IDFor("two")))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	var got []string
	for _, r := range all {
		got = append(got, r.Value)
	}
	assert.Equal(t, []string{"one", "three", "four"}, got)
}

func TestStringRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStringRepository()
	require.NoError(t, repo.Insert(ctx, newRecord(t, "aab")))

	got, err := repo.FindByValue(ctx, "aab")
	require.NoError(t, err)
	got.Properties.CharacterFrequencyMap["a"] = 99

	again, err := repo.FindByValue(ctx, "aab")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Properties.CharacterFrequencyMap["a"])
}

func TestStringRepositoryConcurrentInsertSameContent(t *testing.T) {
	ctx := context.Background()
	repo := NewStringRepository()

	const n = 32
	rec := newRecord(t, "same")
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, conflicts := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Insert(ctx, rec)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
