package service

import (
	"context"
	"errors"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/repository"
)

// AuthAdmin wraps the privileged Firebase Auth operations so the service is
// testable without the Admin SDK.
type AuthAdmin interface {
	CreateUser(ctx context.Context, email, password, displayName string) (uid string, err error)
	DeleteUser(ctx context.Context, uid string) error
}

type firebaseAuthAdmin struct{ client *fbauth.Client }

func NewFirebaseAuthAdmin(client *fbauth.Client) AuthAdmin {
	return &firebaseAuthAdmin{client: client}
}

func (a *firebaseAuthAdmin) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	rec, err := a.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return rec.UID, nil
}

func (a *firebaseAuthAdmin) DeleteUser(ctx context.Context, uid string) error {
	return a.client.DeleteUser(ctx, uid)
}

// UserService provisions and deprovisions accounts: every user is a Firebase
// Auth account plus a users/{uid} document, created and removed together.
type UserService interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	UpdateUser(ctx context.Context, uid string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, callerUID, uid string) error
}

type userService struct {
	authAdmin AuthAdmin
	repo      repository.UserRepository
}

func NewUserService(authAdmin AuthAdmin, repo repository.UserRepository) UserService {
	return &userService{authAdmin: authAdmin, repo: repo}
}

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	uid, err := s.authAdmin.CreateUser(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UID:            uid,
		Email:          req.Email,
		DisplayName:    req.DisplayName,
		Role:           req.Role,
		Status:         model.StatusActive,
		DefaultSiteID:  req.DefaultSiteID,
		DefaultStallID: req.DefaultStallID,
		ManagedSiteIDs: req.ManagedSiteIDs,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Roll back the Auth account so a half-provisioned user cannot sign in.
		if delErr := s.authAdmin.DeleteUser(ctx, uid); delErr != nil {
			log.Error().Str("uid", uid).Err(delErr).Msg("rollback of auth account failed")
		}
		return nil, err
	}
	return userToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = *userToResponse(&users[i])
	}
	return resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, uid string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.DefaultSiteID != nil {
		user.DefaultSiteID = *req.DefaultSiteID
	}
	if req.DefaultStallID != nil {
		user.DefaultStallID = *req.DefaultStallID
	}
	if req.ManagedSiteIDs != nil {
		user.ManagedSiteIDs = *req.ManagedSiteIDs
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return userToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, callerUID, uid string) error {
	if callerUID == uid {
		return ErrSelfDelete
	}
	if _, err := s.repo.FindByUID(ctx, uid); err != nil {
		return err
	}
	if err := s.authAdmin.DeleteUser(ctx, uid); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func userToResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		UID:            u.UID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Role:           u.Role,
		Status:         u.Status,
		DefaultSiteID:  u.DefaultSiteID,
		DefaultStallID: u.DefaultStallID,
		ManagedSiteIDs: u.ManagedSiteIDs,
	}
}
