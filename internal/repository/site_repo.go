package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"stallsync/internal/model"
	"stallsync/internal/scope"
)

// SiteRepository manages the site/stall hierarchy.
// Site deletion intentionally does not touch stalls; stall deletion cascade
// is orchestrated by the service layer through ResetRepository.
type SiteRepository interface {
	CreateSite(ctx context.Context, s *model.Site) error
	FindSiteByID(ctx context.Context, id string) (*model.Site, error)
	ListSites(ctx context.Context, sc scope.Scope) ([]model.Site, error)
	UpdateSite(ctx context.Context, s *model.Site) error
	DeleteSite(ctx context.Context, id string) error

	CreateStall(ctx context.Context, s *model.Stall) error
	FindStallByID(ctx context.Context, id string) (*model.Stall, error)
	ListStalls(ctx context.Context, siteID string) ([]model.Stall, error)
	UpdateStall(ctx context.Context, s *model.Stall) error
	DeleteStall(ctx context.Context, id string) error
}

type siteRepo struct{ fs *firestore.Client }

func NewSiteRepository(fs *firestore.Client) SiteRepository { return &siteRepo{fs: fs} }

func (r *siteRepo) CreateSite(ctx context.Context, s *model.Site) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.fs.Collection(model.ColSites).Doc(s.ID).Create(ctx, s)
	return err
}

func (r *siteRepo) FindSiteByID(ctx context.Context, id string) (*model.Site, error) {
	snap, err := r.fs.Collection(model.ColSites).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	var s model.Site
	if err := snap.DataTo(&s); err != nil {
		return nil, err
	}
	s.ID = snap.Ref.ID
	return &s, nil
}

// ListSites returns the sites visible to the caller. Sites carry no siteId
// field, so scoping is done on the document id.
func (r *siteRepo) ListSites(ctx context.Context, sc scope.Scope) ([]model.Site, error) {
	if sc.Empty() {
		return nil, nil
	}

	iter := r.fs.Collection(model.ColSites).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var sites []model.Site
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if !sc.AllowsSite(snap.Ref.ID) {
			continue
		}
		var s model.Site
		if err := snap.DataTo(&s); err != nil {
			return nil, err
		}
		s.ID = snap.Ref.ID
		sites = append(sites, s)
	}
	return sites, nil
}

func (r *siteRepo) UpdateSite(ctx context.Context, s *model.Site) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := r.fs.Collection(model.ColSites).Doc(s.ID).Set(ctx, s)
	return mapErr(err)
}

func (r *siteRepo) DeleteSite(ctx context.Context, id string) error {
	_, err := r.fs.Collection(model.ColSites).Doc(id).Delete(ctx)
	return mapErr(err)
}

func (r *siteRepo) CreateStall(ctx context.Context, s *model.Stall) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.fs.Collection(model.ColStalls).Doc(s.ID).Create(ctx, s)
	return err
}

func (r *siteRepo) FindStallByID(ctx context.Context, id string) (*model.Stall, error) {
	snap, err := r.fs.Collection(model.ColStalls).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	var s model.Stall
	if err := snap.DataTo(&s); err != nil {
		return nil, err
	}
	s.ID = snap.Ref.ID
	return &s, nil
}

func (r *siteRepo) ListStalls(ctx context.Context, siteID string) ([]model.Stall, error) {
	iter := r.fs.Collection(model.ColStalls).
		Where("siteId", "==", siteID).
		OrderBy("name", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var stalls []model.Stall
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var s model.Stall
		if err := snap.DataTo(&s); err != nil {
			return nil, err
		}
		s.ID = snap.Ref.ID
		stalls = append(stalls, s)
	}
	return stalls, nil
}

func (r *siteRepo) UpdateStall(ctx context.Context, s *model.Stall) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := r.fs.Collection(model.ColStalls).Doc(s.ID).Set(ctx, s)
	return mapErr(err)
}

func (r *siteRepo) DeleteStall(ctx context.Context, id string) error {
	_, err := r.fs.Collection(model.ColStalls).Doc(id).Delete(ctx)
	return mapErr(err)
}
