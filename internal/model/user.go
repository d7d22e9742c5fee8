package model

import "time"

// Role values. Role determines visibility scope: staff is pinned to one
// site/stall, manager to a set of managed sites, admin is unrestricted.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User mirrors the users/{uid} document. The document id is the Firebase
// Auth uid; it is not repeated inside the document.
type User struct {
	UID            string    `firestore:"-"`
	Email          string    `firestore:"email"`
	DisplayName    string    `firestore:"displayName"`
	Role           string    `firestore:"role"`
	Status         string    `firestore:"status"`
	DefaultSiteID  string    `firestore:"defaultSiteId,omitempty"`
	DefaultStallID string    `firestore:"defaultStallId,omitempty"`
	ManagedSiteIDs []string  `firestore:"managedSiteIds,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
}

func (u *User) IsActive() bool { return u.Status == StatusActive }
