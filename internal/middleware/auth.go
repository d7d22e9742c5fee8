package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"stallsync/internal/apierror"
	"stallsync/internal/model"
	"stallsync/internal/repository"
)

const UserKey = "currentUser"

// TokenVerifier validates a Firebase ID token and returns the uid it carries.
// Abstracted from *auth.Client so handler tests can inject a fake.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

type firebaseVerifier struct{ client *auth.Client }

func NewFirebaseVerifier(client *auth.Client) TokenVerifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return tok.UID, nil
}

// FirebaseAuth validates the Bearer ID token on every protected route and
// loads the caller's user document into the Gin context. Inactive users are
// rejected even when their token is still valid.
func FirebaseAuth(verifier TokenVerifier, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.NewCoded(apierror.CodeAuthRequired, "Authentication required"))
			return
		}

		uid, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.NewCoded(apierror.CodeTokenInvalid, "Invalid or expired token"))
			return
		}

		user, err := users.FindByUID(c.Request.Context(), uid)
		if err != nil || !user.IsActive() {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.NewCoded(apierror.CodeTokenInvalid, "Unknown or inactive user"))
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// RequireRole rejects requests whose user role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user, ok := c.MustGet(UserKey).(*model.User)
		if !ok || !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden,
				apierror.NewCoded(apierror.CodeForbidden, "Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// CurrentUser retrieves the typed user from the Gin context.
func CurrentUser(c *gin.Context) *model.User {
	user, _ := c.MustGet(UserKey).(*model.User)
	return user
}
