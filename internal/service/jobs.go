package service

import "context"

// JobDispatcher enqueues async work. Implemented by worker.Dispatcher;
// declared here so services stay decoupled from the queue machinery.
type JobDispatcher interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
	EnqueueImport(ctx context.Context, payload interface{}) error
}

// EmailJobPayload is consumed by the email worker.
type EmailJobPayload struct {
	ToEmail        string `json:"to_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentPath string `json:"attachment_path,omitempty"`
}

// ImportJobPayload is consumed by the Gmail import worker. Imported food
// sales are attributed to the given site and stall.
type ImportJobPayload struct {
	UID     string `json:"uid"`
	SiteID  string `json:"site_id"`
	StallID string `json:"stall_id"`
}
