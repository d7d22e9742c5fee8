package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/repository"
)

// ResetConfirmation is the literal phrase the caller must send to wipe data.
const ResetConfirmation = "RESET DATA"

// AdminService holds the destructive admin-only operations.
type AdminService interface {
	// ResetData wipes every resettable collection. Collections fail
	// independently; the response lists cleared and failed ones separately.
	ResetData(ctx context.Context, actor *model.User, req dto.ResetDataRequest) (*dto.ResetDataResponse, error)
}

type adminService struct {
	reset repository.ResetRepository
}

func NewAdminService(reset repository.ResetRepository) AdminService {
	return &adminService{reset: reset}
}

func (s *adminService) ResetData(ctx context.Context, actor *model.User, req dto.ResetDataRequest) (*dto.ResetDataResponse, error) {
	if req.Confirmation != ResetConfirmation {
		return nil, ErrBadConfirmation
	}

	log.Warn().Str("uid", actor.UID).Str("email", actor.Email).Msg("data reset initiated")

	resp := &dto.ResetDataResponse{Failed: map[string]string{}}
	for _, col := range model.ResettableCollections {
		deleted, err := s.purgeCollection(ctx, col)
		resp.DocumentsDeleted += deleted
		if err != nil {
			log.Error().Err(err).Str("collection", col).Msg("reset: collection purge failed")
			resp.Failed[col] = err.Error()
			continue
		}
		resp.Cleared = append(resp.Cleared, col)
	}

	log.Warn().Int("deleted", resp.DocumentsDeleted).
		Int("cleared", len(resp.Cleared)).Int("failed", len(resp.Failed)).
		Msg("data reset finished")
	return resp, nil
}

// purgeCollection deletes a collection page by page, one batched commit in
// flight at a time, until an empty page comes back.
func (s *adminService) purgeCollection(ctx context.Context, collection string) (int, error) {
	total := 0
	for {
		ids, err := s.reset.FetchPage(ctx, collection, deleteBatchSize)
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
