package model

import "time"

type EducationStatus string

const (
	EducationStatusRecruiting EducationStatus = "RECRUITING"
	EducationStatusAssigned   EducationStatus = "ASSIGNED"
	EducationStatusInProgress EducationStatus = "IN_PROGRESS"
	EducationStatusCompleted  EducationStatus = "COMPLETED"
)

// Education is the scheduled course instance attendance documents and
// instructor assignments attach to. Read-only from this service's point of
// view; owned by the admin training module.
type Education struct {
	ID                   string          `json:"id"`
	ProgramName          string          `json:"programName"`
	Institution          string          `json:"institution"`
	Region               string          `json:"region"`
	RegionAssignmentMode string          `json:"regionAssignmentMode"` // "local" | "any"
	ApplicationDeadline  string          `json:"applicationDeadline"`  // YYYY-MM-DD
	Status               EducationStatus `json:"status"`
	SessionDates         []string        `json:"sessionDates"` // YYYY-MM-DD, one per session
	TotalSessions        int             `json:"totalSessions"`
}

// Instructor carries the capacity facts assignment validation runs against.
// DailyLimit of 0 means no per-instructor override; the global default
// applies.
type Instructor struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Region          string `json:"region"`
	MonthlyCapacity int    `json:"monthlyCapacity"` // 0 = use default
	DailyLimit      int    `json:"dailyLimit"`      // 0 = use global default
}

type AssignmentRole string

const (
	RoleMain      AssignmentRole = "main"
	RoleAssistant AssignmentRole = "assistant"
)

// InstructorAssignment is one committed (session, instructor, role) binding.
type InstructorAssignment struct {
	ID           string         `json:"id"`
	EducationID  string         `json:"educationId"`
	InstructorID string         `json:"instructorId"`
	Role         AssignmentRole `json:"role"`
	Date         string         `json:"date"` // session date, YYYY-MM-DD
	CreatedAt    time.Time      `json:"createdAt"`
}
