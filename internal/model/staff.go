package model

import "time"

// StaffDetails holds HR attributes for a user with the staff role.
// The document id is the staff user's uid.
type StaffDetails struct {
	UID         string    `firestore:"-"`
	Phone       string    `firestore:"phone,omitempty"`
	Address     string    `firestore:"address,omitempty"`
	JoiningDate string    `firestore:"joiningDate,omitempty"` // YYYY-MM-DD
	Salary      string    `firestore:"salary,omitempty"`
	ExitDate    string    `firestore:"exitDate,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

// Staff activity types recorded in the audit trail.
const (
	StaffActivityProfileUpdated = "PROFILE_UPDATED"
	StaffActivityAttendance     = "ATTENDANCE_MARKED"
	StaffActivityExitRecorded   = "EXIT_RECORDED"
)

// StaffActivityLog is an append-only audit record of staff profile and
// attendance changes. Written in the same batch as the mutation it documents.
type StaffActivityLog struct {
	ID           string    `firestore:"-"`
	StaffUID     string    `firestore:"staffUid"`
	SiteID       string    `firestore:"siteId,omitempty"`
	ActivityType string    `firestore:"activityType"`
	Description  string    `firestore:"description"`
	ActorUID     string    `firestore:"actorUid"`
	ActorName    string    `firestore:"actorName"`
	Timestamp    time.Time `firestore:"timestamp"`
}
