package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-leads/internal/models"
)

func newTestRepo(t *testing.T) *ProfileRepository {
	t.Helper()
	db, err := New(models.DatabaseConfig{Path: ":memory:", BusyTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProfileRepository(db)
}

// steppingClock returns a clock that advances one second per call
func steppingClock() func() time.Time {
	var mu sync.Mutex
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at = at.Add(time.Second)
		return at
	}
}

func profile(name, url string) models.ProfileRecord {
	return models.ProfileRecord{
		FullName:   name,
		Headline:   "Backend Engineer at Acme",
		JobTitle:   "Backend Engineer",
		Company:    "Acme",
		Location:   "Bangalore, India",
		ProfileURL: url,
	}
}

func TestUpsertInsertsNewProfile(t *testing.T) {
	repo := newTestRepo(t)
	repo.now = steppingClock()

	stored, err := repo.Upsert(context.Background(), profile("Asha Rao", "https://www.linkedin.com/in/asha-rao/"))
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "Asha Rao", stored.FullName)
	assert.Equal(t, "Acme", stored.Company)
	assert.True(t, stored.CreatedAt.Equal(stored.UpdatedAt))
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestUpsertIsIdempotentOnProfileURL(t *testing.T) {
	repo := newTestRepo(t)
	repo.now = steppingClock()
	ctx := context.Background()
	url := "https://www.linkedin.com/in/asha-rao/"

	first, err := repo.Upsert(ctx, profile("Asha Rao", url))
	require.NoError(t, err)

	changed := profile("Asha R.", url)
	changed.Company = "Globex"
	changed.Location = ""
	second, err := repo.Upsert(ctx, changed)
	require.NoError(t, err)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt), "created_at must not move")
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updated_at must advance")
	assert.Equal(t, "Asha R.", second.FullName)
	assert.Equal(t, "Globex", second.Company)
	assert.Empty(t, second.Location, "update replaces fields, it does not merge")
}

func TestUpsertRejectsEmptyRequiredFields(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Upsert(context.Background(), profile("", "https://www.linkedin.com/in/nobody/"))
	require.Error(t, err)
	_, err = repo.Upsert(context.Background(), profile("Nobody", ""))
	require.Error(t, err)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	asha := profile("Asha Rao", "https://www.linkedin.com/in/asha-rao/")
	ravi := profile("Ravi Kumar", "https://www.linkedin.com/in/ravi-kumar/")
	ravi.Location = "Pune, India"
	ravi.Company = "Infosys Technologies"
	ravi.JobTitle = "Data Scientist"
	for _, p := range []models.ProfileRecord{asha, ravi} {
		_, err := repo.Upsert(ctx, p)
		require.NoError(t, err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"bangalore", []string{"Asha Rao"}},
		{"INFOSYS", []string{"Ravi Kumar"}},
		{"data sci", []string{"Ravi Kumar"}},
		{"india", []string{"Asha Rao", "Ravi Kumar"}},
		{"rao", []string{"Asha Rao"}},
		{"%", nil},
		{"nobody", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			found, err := repo.Search(ctx, tt.query)
			require.NoError(t, err)
			var names []string
			for _, p := range found {
				names = append(names, p.FullName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSearchFoldsNonASCII(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := profile("Zoë Émond", "https://www.linkedin.com/in/zoe-emond/")
	p.Location = "Zürich"
	_, err := repo.Upsert(ctx, p)
	require.NoError(t, err)

	for _, q := range []string{"ZOË", "émond", "ZÜRICH"} {
		found, err := repo.Search(ctx, q)
		require.NoError(t, err)
		assert.Len(t, found, 1, q)
	}
}

func TestSearchEmptyStoreReturnsEmptySlice(t *testing.T) {
	repo := newTestRepo(t)

	found, err := repo.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestGetByURL(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	url := "https://www.linkedin.com/in/asha-rao/"

	_, err := repo.GetByURL(ctx, url)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.Upsert(ctx, profile("Asha Rao", url))
	require.NoError(t, err)

	got, err := repo.GetByURL(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.FullName)
}

func TestConcurrentUpsertsKeepOneRowPerURL(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Upsert(ctx, profile(fmt.Sprintf("Lead %d", i), fmt.Sprintf("https://www.linkedin.com/in/lead-%d/", i%5)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestInitSchemaKeepsRows(t *testing.T) {
	db, err := New(models.DatabaseConfig{Path: ":memory:", BusyTimeout: time.Second})
	require.NoError(t, err)
	defer db.Close()
	repo := NewProfileRepository(db)
	ctx := context.Background()

	_, err = repo.Upsert(ctx, profile("Asha Rao", "https://www.linkedin.com/in/asha-rao/"))
	require.NoError(t, err)
	require.NoError(t, db.InitSchema(ctx))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, db.Ping(ctx))
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"leads.db?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000",
		dsn(models.DatabaseConfig{Path: "leads.db", BusyTimeout: 5 * time.Second}))
	assert.Equal(t,
		"file:leads.db?cache=shared&_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=250",
		dsn(models.DatabaseConfig{Path: "file:leads.db?cache=shared", BusyTimeout: 250 * time.Millisecond}))
}
