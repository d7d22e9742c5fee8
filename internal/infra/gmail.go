package infra

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// HungerboxQuery matches the daily vendor report mail Hungerbox sends.
const HungerboxQuery = `from:noreply@hungerbox.com subject:"Vendor Report" has:attachment`

// MailFetcher pulls CSV report attachments out of a connected mailbox.
// Abstracted so the import worker can be tested without the Gmail API.
type MailFetcher interface {
	FetchReportAttachments(ctx context.Context, ts oauth2.TokenSource, query string, max int64) ([][]byte, error)
}

type gmailFetcher struct{}

func NewGmailFetcher() MailFetcher { return &gmailFetcher{} }

func (g *gmailFetcher) FetchReportAttachments(ctx context.Context, ts oauth2.TokenSource, query string, max int64) ([][]byte, error) {
	srv, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gmail: build service: %w", err)
	}

	list, err := srv.Users.Messages.List("me").Q(query).MaxResults(max).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail: list messages: %w", err)
	}

	var attachments [][]byte
	for _, m := range list.Messages {
		msg, err := srv.Users.Messages.Get("me", m.Id).Do()
		if err != nil {
			return nil, fmt.Errorf("gmail: get message %s: %w", m.Id, err)
		}
		if msg.Payload == nil {
			continue
		}
		for _, part := range msg.Payload.Parts {
			if !strings.HasSuffix(strings.ToLower(part.Filename), ".csv") {
				continue
			}
			if part.Body == nil || part.Body.AttachmentId == "" {
				continue
			}
			att, err := srv.Users.Messages.Attachments.Get("me", m.Id, part.Body.AttachmentId).Do()
			if err != nil {
				return nil, fmt.Errorf("gmail: get attachment: %w", err)
			}
			data, err := decodeAttachment(att.Data)
			if err != nil {
				return nil, fmt.Errorf("gmail: decode attachment: %w", err)
			}
			attachments = append(attachments, data)
		}
	}
	return attachments, nil
}

// decodeAttachment handles both padded and unpadded base64url payloads.
func decodeAttachment(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}
