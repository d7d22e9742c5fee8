package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"stallsync/internal/model"
)

// TokenRepository persists Google OAuth tokens keyed by user id.
type TokenRepository interface {
	Save(ctx context.Context, t *model.GoogleOAuthToken) error
	Find(ctx context.Context, uid string) (*model.GoogleOAuthToken, error)
	Delete(ctx context.Context, uid string) error
}

type tokenRepo struct{ fs *firestore.Client }

func NewTokenRepository(fs *firestore.Client) TokenRepository { return &tokenRepo{fs: fs} }

// Save upserts the token document. Google only returns a refresh token on the
// first consent, so an empty incoming refresh token preserves the stored one.
func (r *tokenRepo) Save(ctx context.Context, t *model.GoogleOAuthToken) error {
	if t.RefreshToken == "" {
		if existing, err := r.Find(ctx, t.UID); err == nil {
			t.RefreshToken = existing.RefreshToken
		}
	}
	t.UpdatedAt = time.Now().UTC()
	_, err := r.fs.Collection(model.ColOAuthTokens).Doc(t.UID).Set(ctx, t)
	return err
}

func (r *tokenRepo) Find(ctx context.Context, uid string) (*model.GoogleOAuthToken, error) {
	snap, err := r.fs.Collection(model.ColOAuthTokens).Doc(uid).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	var t model.GoogleOAuthToken
	if err := snap.DataTo(&t); err != nil {
		return nil, err
	}
	t.UID = snap.Ref.ID
	return &t, nil
}

func (r *tokenRepo) Delete(ctx context.Context, uid string) error {
	_, err := r.fs.Collection(model.ColOAuthTokens).Doc(uid).Delete(ctx)
	return mapErr(err)
}
