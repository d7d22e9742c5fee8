package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stallsync/internal/infra"
	"stallsync/internal/model"
	"stallsync/internal/repository"
)

// stateTTL bounds how long an OAuth consent round-trip may take.
const stateTTL = 10 * time.Minute

// Callback failure categories. The handler turns these into redirect query
// parameters so the frontend can show a specific message.
var (
	ErrInvalidState   = errors.New("invalid oauth state")
	ErrExchangeFailed = errors.New("code exchange failed")
	ErrStorageFailed  = errors.New("token storage failed")
)

// IntegrationStatus reports whether a user has a Google account linked.
type IntegrationStatus struct {
	Connected bool   `json:"connected"`
	Expiry    string `json:"expiry,omitempty"`
}

// IntegrationService drives the Google account link for the Gmail-based
// Hungerbox import. The OAuth state parameter is a short-lived signed JWT
// carrying the initiating user's uid, so the callback needs no session.
type IntegrationService interface {
	ConnectURL(uid string) (string, error)
	// HandleCallback verifies the state, exchanges the code, and stores the
	// token. It returns the uid the link belongs to.
	HandleCallback(ctx context.Context, state, code string) (string, error)
	Status(ctx context.Context, uid string) (*IntegrationStatus, error)
	Disconnect(ctx context.Context, uid string) error
	// TriggerImport enqueues a Gmail import job for a connected user.
	TriggerImport(ctx context.Context, actor *model.User, siteID, stallID string) error
}

type integrationService struct {
	oauth       infra.OAuthExchanger
	tokens      repository.TokenRepository
	dispatcher  JobDispatcher
	stateSecret []byte
}

func NewIntegrationService(
	oauth infra.OAuthExchanger,
	tokens repository.TokenRepository,
	dispatcher JobDispatcher,
	stateSecret string,
) IntegrationService {
	return &integrationService{
		oauth:       oauth,
		tokens:      tokens,
		dispatcher:  dispatcher,
		stateSecret: []byte(stateSecret),
	}
}

type stateClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *integrationService) ConnectURL(uid string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	})
	state, err := token.SignedString(s.stateSecret)
	if err != nil {
		return "", err
	}
	return s.oauth.AuthURL(state), nil
}

func (s *integrationService) HandleCallback(ctx context.Context, state, code string) (string, error) {
	uid, err := s.verifyState(state)
	if err != nil {
		return "", ErrInvalidState
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return uid, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	stored := &model.GoogleOAuthToken{
		UID:          uid,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if err := s.tokens.Save(ctx, stored); err != nil {
		return uid, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return uid, nil
}

func (s *integrationService) verifyState(state string) (string, error) {
	claims := &stateClaims{}
	_, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.stateSecret, nil
	})
	if err != nil {
		return "", err
	}
	if claims.UID == "" {
		return "", ErrInvalidState
	}
	return claims.UID, nil
}

func (s *integrationService) Status(ctx context.Context, uid string) (*IntegrationStatus, error) {
	tok, err := s.tokens.Find(ctx, uid)
	if err == repository.ErrNotFound {
		return &IntegrationStatus{Connected: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &IntegrationStatus{
		Connected: true,
		Expiry:    tok.Expiry.UTC().Format(time.RFC3339),
	}, nil
}

func (s *integrationService) Disconnect(ctx context.Context, uid string) error {
	return s.tokens.Delete(ctx, uid)
}

func (s *integrationService) TriggerImport(ctx context.Context, actor *model.User, siteID, stallID string) error {
	if _, err := s.tokens.Find(ctx, actor.UID); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotConnected
		}
		return err
	}
	return s.dispatcher.EnqueueImport(ctx, ImportJobPayload{
		UID:     actor.UID,
		SiteID:  siteID,
		StallID: stallID,
	})
}
