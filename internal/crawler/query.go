package crawler

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"linkedin-leads/internal/models"
)

// ProfileSearcher is the read side of the profile store
type ProfileSearcher interface {
	Search(ctx context.Context, query string) ([]models.ProfileRecord, error)
}

// QueryService searches stored profiles without crawling
type QueryService struct {
	store  ProfileSearcher
	logger *zap.Logger
}

// NewQueryService creates a new QueryService instance
func NewQueryService(store ProfileSearcher, logger *zap.Logger) *QueryService {
	return &QueryService{store: store, logger: logger}
}

// Search returns stored profiles whose name, title, company or location contains query
func (qs *QueryService) Search(ctx context.Context, query string) ([]models.ProfileRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", models.ErrValidation)
	}

	profiles, err := qs.store.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	qs.logger.Info("profiles searched", zap.String("query", query), zap.Int("matches", len(profiles)))
	return profiles, nil
}
