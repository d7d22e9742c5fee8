package model

import "time"

// GoogleOAuthToken stores the Gmail tokens for one user, keyed by uid.
// RefreshToken is only returned by Google on the first consent, so updates
// must preserve an existing refresh token when the new exchange omits one.
type GoogleOAuthToken struct {
	UID          string    `firestore:"-"`
	AccessToken  string    `firestore:"accessToken"`
	RefreshToken string    `firestore:"refreshToken,omitempty"`
	TokenType    string    `firestore:"tokenType"`
	Expiry       time.Time `firestore:"expiry"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}
