package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"stallsync/internal/model"
)

// StaffRepository manages staff HR details and their append-only activity
// trail. SaveDetails writes both documents through one WriteBatch so a
// profile change is never persisted without its audit entry.
type StaffRepository interface {
	SaveDetails(ctx context.Context, d *model.StaffDetails, entry *model.StaffActivityLog) error
	FindDetails(ctx context.Context, uid string) (*model.StaffDetails, error)
	AppendActivity(ctx context.Context, entry *model.StaffActivityLog) error
	ListActivity(ctx context.Context, staffUID string, limit int) ([]model.StaffActivityLog, error)
}

type staffRepo struct{ fs *firestore.Client }

func NewStaffRepository(fs *firestore.Client) StaffRepository { return &staffRepo{fs: fs} }

func (r *staffRepo) SaveDetails(ctx context.Context, d *model.StaffDetails, entry *model.StaffActivityLog) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	entry.ID = uuid.NewString()
	entry.Timestamp = now

	batch := r.fs.Batch()
	batch.Set(r.fs.Collection(model.ColStaffDetails).Doc(d.UID), d)
	batch.Create(r.fs.Collection(model.ColStaffActivityLogs).Doc(entry.ID), entry)
	_, err := batch.Commit(ctx)
	return err
}

func (r *staffRepo) FindDetails(ctx context.Context, uid string) (*model.StaffDetails, error) {
	snap, err := r.fs.Collection(model.ColStaffDetails).Doc(uid).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	var d model.StaffDetails
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	d.UID = snap.Ref.ID
	return &d, nil
}

func (r *staffRepo) AppendActivity(ctx context.Context, entry *model.StaffActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err := r.fs.Collection(model.ColStaffActivityLogs).Doc(entry.ID).Create(ctx, entry)
	return err
}

func (r *staffRepo) ListActivity(ctx context.Context, staffUID string, limit int) ([]model.StaffActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	iter := r.fs.Collection(model.ColStaffActivityLogs).
		Where("staffUid", "==", staffUID).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var logs []model.StaffActivityLog
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var entry model.StaffActivityLog
		if err := snap.DataTo(&entry); err != nil {
			return nil, err
		}
		entry.ID = snap.Ref.ID
		logs = append(logs, entry)
	}
	return logs, nil
}
