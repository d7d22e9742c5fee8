package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"stallsync/internal/model"
)

// UserRepository manages users/{uid} documents. The Firebase Auth account
// lifecycle is handled separately by the service layer.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, uid string) error
}

type userRepo struct{ fs *firestore.Client }

func NewUserRepository(fs *firestore.Client) UserRepository { return &userRepo{fs: fs} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := r.fs.Collection(model.ColUsers).Doc(u.UID).Create(ctx, u)
	return err
}

func (r *userRepo) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	snap, err := r.fs.Collection(model.ColUsers).Doc(uid).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	var u model.User
	if err := snap.DataTo(&u); err != nil {
		return nil, err
	}
	u.UID = snap.Ref.ID
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	iter := r.fs.Collection(model.ColUsers).OrderBy("displayName", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var users []model.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var u model.User
		if err := snap.DataTo(&u); err != nil {
			return nil, err
		}
		u.UID = snap.Ref.ID
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := r.fs.Collection(model.ColUsers).Doc(u.UID).Set(ctx, u)
	return mapErr(err)
}

func (r *userRepo) Delete(ctx context.Context, uid string) error {
	_, err := r.fs.Collection(model.ColUsers).Doc(uid).Delete(ctx)
	return mapErr(err)
}
