package model

import "time"

type RosterSheetStatus string

const (
	RosterSheetDraft            RosterSheetStatus = "DRAFT"
	RosterSheetSentToInstructor RosterSheetStatus = "SENT_TO_INSTRUCTOR"
)

// RosterEntry is one student row of a teacher-submitted roster. It carries
// no attendance data; attendance already recorded by the instructor always
// wins during reconciliation.
type RosterEntry struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	Gender        string `json:"gender"`
	IsTransferred bool   `json:"isTransferred,omitempty"`
}

// RosterSheet is the externally owned roster/session record a teacher sends
// to an instructor. Merged into the attendance document without ever
// overwriting recorded attendance.
type RosterSheet struct {
	EducationID string              `json:"educationId"`
	Status      RosterSheetStatus   `json:"status"`
	Entries     []RosterEntry       `json:"entries"`
	Sessions    []SessionAttendance `json:"sessions,omitempty"`
	SentAt      *time.Time          `json:"sentAt,omitempty"`
}
