package worker

// import_worker.go
// Processes Gmail import jobs: pulls Hungerbox vendor report attachments from
// the user's connected mailbox and records them as food sale transactions.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"stallsync/internal/infra"
	"stallsync/internal/repository"
	"stallsync/internal/service"
)

// ImportWorker runs the OAuth-gated Hungerbox sales import.
type ImportWorker struct {
	tokens    repository.TokenRepository
	foodSales repository.FoodSaleRepository
	exchanger infra.OAuthExchanger
	fetcher   infra.MailFetcher
}

func NewImportWorker(
	tokens repository.TokenRepository,
	foodSales repository.FoodSaleRepository,
	exchanger infra.OAuthExchanger,
	fetcher infra.MailFetcher,
) *ImportWorker {
	return &ImportWorker{tokens: tokens, foodSales: foodSales, exchanger: exchanger, fetcher: fetcher}
}

func (w *ImportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload service.ImportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("import_worker: invalid payload")
		return nil
	}

	stored, err := w.tokens.Find(ctx, payload.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Token was disconnected after the job was queued, nothing to retry.
			log.Warn().Str("uid", payload.UID).Msg("import_worker: no stored token, dropping job")
			return nil
		}
		return fmt.Errorf("import_worker: load token: %w", err)
	}

	ts := w.exchanger.TokenSource(ctx, &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.Expiry,
	})

	attachments, err := w.fetcher.FetchReportAttachments(ctx, ts, infra.HungerboxQuery, 5)
	if err != nil {
		return fmt.Errorf("import_worker: fetch mail: %w", err)
	}

	created, skipped, badRows := 0, 0, 0
	for _, data := range attachments {
		sales, rowErrs := service.ParseHungerboxCSV(bytes.NewReader(data), payload.SiteID, payload.StallID)
		badRows += len(rowErrs)
		for i := range sales {
			sale := sales[i]
			// De-dupe on the external order id since reports overlap across days.
			if _, err := w.foodSales.FindByHungerboxOrderID(ctx, sale.HungerboxOrderID); err == nil {
				skipped++
				continue
			} else if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("import_worker: dedupe lookup: %w", err)
			}
			sale.RecordedByUID = payload.UID
			sale.RecordedBy = "Hungerbox Import"
			if err := w.foodSales.Create(ctx, &sale); err != nil {
				return fmt.Errorf("import_worker: create sale: %w", err)
			}
			created++
		}
	}

	log.Info().
		Str("uid", payload.UID).
		Int("created", created).
		Int("skipped", skipped).
		Int("bad_rows", badRows).
		Msg("import_worker: hungerbox import finished")
	return nil
}
