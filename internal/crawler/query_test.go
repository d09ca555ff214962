package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkedin-leads/internal/models"
)

type stubSearcher struct {
	queries []string
	result  []models.ProfileRecord
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]models.ProfileRecord, error) {
	s.queries = append(s.queries, query)
	return s.result, nil
}

func TestQueryServiceRejectsEmptyQuery(t *testing.T) {
	store := &stubSearcher{}
	qs := NewQueryService(store, zap.NewNop())

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := qs.Search(context.Background(), q)
		require.ErrorIs(t, err, models.ErrValidation)
	}
	assert.Empty(t, store.queries, "store must not be queried for invalid input")
}

func TestQueryServiceDelegates(t *testing.T) {
	want := []models.ProfileRecord{{FullName: "Asha Rao", ProfileURL: "https://www.linkedin.com/in/asha"}}
	store := &stubSearcher{result: want}
	qs := NewQueryService(store, zap.NewNop())

	got, err := qs.Search(context.Background(), "  bangalore ")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"bangalore"}, store.queries)
}
