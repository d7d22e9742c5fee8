package worker

// email_worker.go
// Processes email jobs from QueueEmail: low-stock alerts and daily summary
// reports, optionally with a PDF attachment.

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"stallsync/internal/infra"
	"stallsync/internal/service"
)

// EmailWorker sends queued emails via SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one queued email. Malformed payloads are dropped, delivery
// failures are returned so the pool can retry.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload service.EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	if err := w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, payload.AttachmentPath); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: email sent")
	return nil
}
