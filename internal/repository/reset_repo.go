package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// ResetRepository exposes the page-level primitives behind the bulk deletion
// loops: fetch a page of document ids, delete them in one batched commit.
// The iteration itself lives in the service layer so it can be tested
// without a live Firestore.
type ResetRepository interface {
	// FetchPage returns up to limit document ids from a collection.
	FetchPage(ctx context.Context, collection string, limit int) ([]string, error)
	// FetchStallPage returns up to limit ids of documents belonging to one
	// stall. Used by the stall deletion cascade.
	FetchStallPage(ctx context.Context, collection, stallID string, limit int) ([]string, error)
	// DeleteBatch removes the given documents in a single batched commit.
	DeleteBatch(ctx context.Context, collection string, ids []string) error
}

type resetRepo struct{ fs *firestore.Client }

func NewResetRepository(fs *firestore.Client) ResetRepository { return &resetRepo{fs: fs} }

func (r *resetRepo) FetchPage(ctx context.Context, collection string, limit int) ([]string, error) {
	q := r.fs.Collection(collection).Select().Limit(limit)
	return collectIDs(q.Documents(ctx))
}

func (r *resetRepo) FetchStallPage(ctx context.Context, collection, stallID string, limit int) ([]string, error) {
	q := r.fs.Collection(collection).
		Where("stallId", "==", stallID).
		Select().
		Limit(limit)
	return collectIDs(q.Documents(ctx))
}

func (r *resetRepo) DeleteBatch(ctx context.Context, collection string, ids []string) error {
	batch := r.fs.Batch()
	for _, id := range ids {
		batch.Delete(r.fs.Collection(collection).Doc(id))
	}
	_, err := batch.Commit(ctx)
	return err
}

func collectIDs(iter *firestore.DocumentIterator) ([]string, error) {
	defer iter.Stop()
	var ids []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, snap.Ref.ID)
	}
	return ids, nil
}
