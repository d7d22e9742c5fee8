package model

import "time"

// Site is a physical business location containing one or more stalls.
type Site struct {
	ID        string    `firestore:"-"`
	Name      string    `firestore:"name"`
	Location  string    `firestore:"location,omitempty"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Stall is a sub-unit of a site (e.g. a specific food counter) with its own
// stock and sales scope.
type Stall struct {
	ID        string    `firestore:"-"`
	SiteID    string    `firestore:"siteId"`
	Name      string    `firestore:"name"`
	StallType string    `firestore:"stallType"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}
