package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Circuit breaker guarding the Google endpoints (token exchange, Gmail).
// State machine: Closed (requests flow), Open (fast-fail), Half-Open (one
// trial call allowed to test recovery).

// CBState is the current breaker state.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

// String renders the state for the health endpoint and logs.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling the wrapped endpoint while the
// breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds the trip and recovery thresholds.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures before tripping open
	SuccessThreshold int           // consecutive half-open successes before closing
	OpenTimeout      time.Duration // time spent open before the first trial call
}

func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker wraps calls to a flaky external dependency and fast-fails
// while that dependency is known to be down.
type CircuitBreaker struct {
	mu           sync.Mutex
	state        CBState
	failures     int
	successes    int
	lastFailure  time.Time
	failureTrip  int
	successClose int
	openTimeout  time.Duration
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{
		state:        CBClosed,
		failureTrip:  cfg.FailureThreshold,
		successClose: cfg.SuccessThreshold,
		openTimeout:  cfg.OpenTimeout,
	}
}

// State reports the current state, moving open breakers to half-open once
// the open timeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && time.Since(cb.lastFailure) >= cb.openTimeout {
		cb.state = CBHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open, recording the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

// onFailure must be called under lock.
func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailure = time.Now()
	switch cb.state {
	case CBClosed:
		if cb.failures >= cb.failureTrip {
			cb.state = CBOpen
			cb.successes = 0
		}
	case CBHalfOpen:
		// Trial call failed, back to open for another timeout
		cb.state = CBOpen
		cb.failures = 0
	}
}

// onSuccess must be called under lock.
func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.successClose {
			cb.state = CBClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}

// guardedExchanger routes the token exchange through the breaker. Consent
// URL building and token sources are local operations and pass straight
// through.
type guardedExchanger struct {
	inner OAuthExchanger
	cb    *CircuitBreaker
}

func NewGuardedExchanger(inner OAuthExchanger, cb *CircuitBreaker) OAuthExchanger {
	return &guardedExchanger{inner: inner, cb: cb}
}

func (g *guardedExchanger) AuthURL(state string) string { return g.inner.AuthURL(state) }

func (g *guardedExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	var tok *oauth2.Token
	err := g.cb.Execute(func() error {
		var err error
		tok, err = g.inner.Exchange(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

func (g *guardedExchanger) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return g.inner.TokenSource(ctx, tok)
}

type guardedMailFetcher struct {
	inner MailFetcher
	cb    *CircuitBreaker
}

func NewGuardedMailFetcher(inner MailFetcher, cb *CircuitBreaker) MailFetcher {
	return &guardedMailFetcher{inner: inner, cb: cb}
}

func (g *guardedMailFetcher) FetchReportAttachments(ctx context.Context, ts oauth2.TokenSource, query string, max int64) ([][]byte, error) {
	var attachments [][]byte
	err := g.cb.Execute(func() error {
		var err error
		attachments, err = g.inner.FetchReportAttachments(ctx, ts, query, max)
		return err
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}
