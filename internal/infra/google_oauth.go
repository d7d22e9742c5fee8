package infra

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"stallsync/internal/config"
)

// GmailReadScope is the only scope requested: the import feature reads
// Hungerbox report mail, nothing else.
const GmailReadScope = "https://www.googleapis.com/auth/gmail.readonly"

// OAuthExchanger abstracts the Google token endpoint so handlers and the
// import worker can be unit-tested without network access.
type OAuthExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource
}

type googleOAuth struct {
	conf *oauth2.Config
}

// NewGoogleOAuth builds the authorization-code exchanger for the Gmail import.
func NewGoogleOAuth(cfg *config.Config) OAuthExchanger {
	return &googleOAuth{conf: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{GmailReadScope},
		Endpoint:     google.Endpoint,
	}}
}

// AuthURL returns the consent URL. Offline access is requested so Google
// issues a refresh token; consent is forced so re-connecting a previously
// linked account still yields one.
func (g *googleOAuth) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (g *googleOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.conf.Exchange(ctx, code)
}

func (g *googleOAuth) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return g.conf.TokenSource(ctx, tok)
}
