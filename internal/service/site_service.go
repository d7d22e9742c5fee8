package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/repository"
	"stallsync/internal/scope"
)

// deleteBatchSize caps one batched delete commit. Firestore allows 500 writes
// per commit.
const deleteBatchSize = 500

// SiteService manages the site/stall hierarchy. Deleting a stall cascades to
// its stock items and movement logs; deleting a site does not cascade.
type SiteService interface {
	CreateSite(ctx context.Context, req dto.CreateSiteRequest) (*dto.SiteResponse, error)
	ListSites(ctx context.Context, actor *model.User) ([]dto.SiteResponse, error)
	GetSite(ctx context.Context, actor *model.User, id string) (*dto.SiteResponse, error)
	UpdateSite(ctx context.Context, id string, req dto.UpdateSiteRequest) (*dto.SiteResponse, error)
	DeleteSite(ctx context.Context, id string) error

	CreateStall(ctx context.Context, siteID string, req dto.CreateStallRequest) (*dto.StallResponse, error)
	ListStalls(ctx context.Context, actor *model.User, siteID string) ([]dto.StallResponse, error)
	UpdateStall(ctx context.Context, siteID, stallID string, req dto.UpdateStallRequest) (*dto.StallResponse, error)
	DeleteStall(ctx context.Context, siteID, stallID string) error
}

type siteService struct {
	repo  repository.SiteRepository
	reset repository.ResetRepository
}

func NewSiteService(repo repository.SiteRepository, reset repository.ResetRepository) SiteService {
	return &siteService{repo: repo, reset: reset}
}

func (s *siteService) CreateSite(ctx context.Context, req dto.CreateSiteRequest) (*dto.SiteResponse, error) {
	site := &model.Site{Name: req.Name, Location: req.Location}
	if err := s.repo.CreateSite(ctx, site); err != nil {
		return nil, err
	}
	return siteToResponse(site), nil
}

func (s *siteService) ListSites(ctx context.Context, actor *model.User) ([]dto.SiteResponse, error) {
	sites, err := s.repo.ListSites(ctx, scope.Resolve(actor))
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SiteResponse, len(sites))
	for i := range sites {
		resp[i] = *siteToResponse(&sites[i])
	}
	return resp, nil
}

func (s *siteService) GetSite(ctx context.Context, actor *model.User, id string) (*dto.SiteResponse, error) {
	if !scope.Resolve(actor).AllowsSite(id) {
		return nil, ErrOutOfScope
	}
	site, err := s.repo.FindSiteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return siteToResponse(site), nil
}

func (s *siteService) UpdateSite(ctx context.Context, id string, req dto.UpdateSiteRequest) (*dto.SiteResponse, error) {
	site, err := s.repo.FindSiteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Location != nil {
		site.Location = *req.Location
	}
	if err := s.repo.UpdateSite(ctx, site); err != nil {
		return nil, err
	}
	return siteToResponse(site), nil
}

// DeleteSite removes the site document only. Stalls and their data survive as
// orphans until deleted explicitly; a site purge is the reset-data endpoint's
// job.
func (s *siteService) DeleteSite(ctx context.Context, id string) error {
	if _, err := s.repo.FindSiteByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteSite(ctx, id)
}

func (s *siteService) CreateStall(ctx context.Context, siteID string, req dto.CreateStallRequest) (*dto.StallResponse, error) {
	if _, err := s.repo.FindSiteByID(ctx, siteID); err != nil {
		return nil, err
	}
	stall := &model.Stall{SiteID: siteID, Name: req.Name, StallType: req.StallType}
	if err := s.repo.CreateStall(ctx, stall); err != nil {
		return nil, err
	}
	return stallToResponse(stall), nil
}

func (s *siteService) ListStalls(ctx context.Context, actor *model.User, siteID string) ([]dto.StallResponse, error) {
	if !scope.Resolve(actor).AllowsSite(siteID) {
		return nil, ErrOutOfScope
	}
	stalls, err := s.repo.ListStalls(ctx, siteID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StallResponse, len(stalls))
	for i := range stalls {
		resp[i] = *stallToResponse(&stalls[i])
	}
	return resp, nil
}

func (s *siteService) UpdateStall(ctx context.Context, siteID, stallID string, req dto.UpdateStallRequest) (*dto.StallResponse, error) {
	stall, err := s.repo.FindStallByID(ctx, stallID)
	if err != nil {
		return nil, err
	}
	if stall.SiteID != siteID {
		return nil, repository.ErrNotFound
	}
	if req.Name != nil {
		stall.Name = *req.Name
	}
	if req.StallType != nil {
		stall.StallType = *req.StallType
	}
	if err := s.repo.UpdateStall(ctx, stall); err != nil {
		return nil, err
	}
	return stallToResponse(stall), nil
}

// DeleteStall removes the stall and cascades to every stock item and movement
// log that belonged to it, page by page.
func (s *siteService) DeleteStall(ctx context.Context, siteID, stallID string) error {
	stall, err := s.repo.FindStallByID(ctx, stallID)
	if err != nil {
		return err
	}
	if stall.SiteID != siteID {
		return repository.ErrNotFound
	}

	for _, col := range []string{model.ColStockItems, model.ColStockMovementLogs} {
		deleted, err := s.purgeStall(ctx, col, stallID)
		if err != nil {
			return err
		}
		if deleted > 0 {
			log.Info().Str("collection", col).Str("stallId", stallID).
				Int("deleted", deleted).Msg("stall cascade purge")
		}
	}
	return s.repo.DeleteStall(ctx, stallID)
}

func (s *siteService) purgeStall(ctx context.Context, collection, stallID string) (int, error) {
	total := 0
	for {
		ids, err := s.reset.FetchStallPage(ctx, collection, stallID, deleteBatchSize)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		if err := s.reset.DeleteBatch(ctx, collection, ids); err != nil {
			return total, err
		}
		total += len(ids)
	}
}

func siteToResponse(site *model.Site) *dto.SiteResponse {
	return &dto.SiteResponse{ID: site.ID, Name: site.Name, Location: site.Location}
}

func stallToResponse(stall *model.Stall) *dto.StallResponse {
	return &dto.StallResponse{
		ID:        stall.ID,
		SiteID:    stall.SiteID,
		Name:      stall.Name,
		StallType: stall.StallType,
	}
}
