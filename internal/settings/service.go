package settings

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/moola-sync/internal"
	settingsDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/settings"
)

type RepositoryAPI interface {
	GetSingleton(ctx context.Context) (*settingsDatamodel.Settings, error)
	GetCategoryRows(ctx context.Context) ([]*settingsDatamodel.CategoryMapRow, error)
	GetCardRows(ctx context.Context) ([]*settingsDatamodel.CardMapRow, error)
	GetBranchRows(ctx context.Context) ([]*settingsDatamodel.BranchMapRow, error)
	GetTagDimensionRows(ctx context.Context) ([]*settingsDatamodel.TagDimensionMapRow, error)
	SaveLastSuccessTime(ctx context.Context, t time.Time) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Load fetches the settings singleton and all mapping tables as one
// read-only snapshot. A disabled integration is a configuration error.
func (s *Service) Load(ctx context.Context) (*Settings, error) {
	dm, err := s.repo.GetSingleton(ctx)
	if err != nil {
		s.logger.Error("failed to load moola settings", "error", err)
		return nil, err
	}
	if dm == nil {
		return nil, internal.ErrSettingsNotFound
	}
	if !dm.Enabled {
		return nil, internal.ErrIntegrationDisabled
	}

	categories, err := s.repo.GetCategoryRows(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := s.repo.GetCardRows(ctx)
	if err != nil {
		return nil, err
	}
	branches, err := s.repo.GetBranchRows(ctx)
	if err != nil {
		return nil, err
	}
	tagDims, err := s.repo.GetTagDimensionRows(ctx)
	if err != nil {
		return nil, err
	}

	loaded := FromDataModel(dm, categories, cards, branches, tagDims)
	s.logger.Debug("moola settings loaded",
		"categories", len(loaded.Categories),
		"cards", len(loaded.Cards),
		"branches", len(loaded.Branches),
		"tag_dimensions", len(loaded.TagDimensions))
	return loaded, nil
}

// AdvanceCursor persists the success cursor.
func (s *Service) AdvanceCursor(ctx context.Context, t time.Time) error {
	if err := s.repo.SaveLastSuccessTime(ctx, t); err != nil {
		s.logger.Error("failed to advance sync cursor", "error", err, "cursor", t)
		return err
	}
	s.logger.Info("sync cursor advanced", "cursor", t)
	return nil
}
