package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var errUpstream = errors.New("upstream down")

func failing() error  { return errUpstream }
func succeeds() error { return nil }

func testConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: 20 * time.Millisecond}
}

func TestCircuitBreakerTripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(failing), errUpstream)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Open breaker fast-fails without calling through
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())
	for i := 0; i < 3; i++ {
		_ = cb.Execute(failing)
	}
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(succeeds))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(succeeds))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerFailedTrialReopens(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())
	for i := 0; i < 3; i++ {
		_ = cb.Execute(failing)
	}
	time.Sleep(25 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	assert.ErrorIs(t, cb.Execute(failing), errUpstream)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreakerSuccessResetsFailureStreak(t *testing.T) {
	cb := NewCircuitBreaker(testConfig())
	_ = cb.Execute(failing)
	_ = cb.Execute(failing)
	require.NoError(t, cb.Execute(succeeds))
	_ = cb.Execute(failing)
	_ = cb.Execute(failing)
	// Streak was broken, so five non-consecutive failures never trip
	assert.Equal(t, CBClosed, cb.State())
}

type flakyExchanger struct {
	err   error
	calls int
}

func (f *flakyExchanger) AuthURL(state string) string { return "https://example.com?state=" + state }
func (f *flakyExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "at-" + code}, nil
}
func (f *flakyExchanger) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return oauth2.StaticTokenSource(tok)
}

func TestGuardedExchangerFastFailsWhenOpen(t *testing.T) {
	inner := &flakyExchanger{err: errUpstream}
	cb := NewCircuitBreaker(testConfig())
	guarded := NewGuardedExchanger(inner, cb)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := guarded.Exchange(ctx, "c")
		assert.ErrorIs(t, err, errUpstream)
	}

	_, err := guarded.Exchange(ctx, "c")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 3, inner.calls)

	// Local operations bypass the breaker entirely
	assert.Contains(t, guarded.AuthURL("s"), "state=s")
}

func TestGuardedExchangerPassesTokenThrough(t *testing.T) {
	guarded := NewGuardedExchanger(&flakyExchanger{}, NewCircuitBreaker(testConfig()))
	tok, err := guarded.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "at-code-1", tok.AccessToken)
}
