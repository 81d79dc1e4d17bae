package model

import "time"

type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusSubmitted DocumentStatus = "SUBMITTED"
	StatusApproved  DocumentStatus = "APPROVED"
	StatusRejected  DocumentStatus = "REJECTED"
)

// EvictionPriority orders documents for quota eviction: higher values are
// evicted first. Drafts are the most expendable, approved documents the
// least (they are the official record).
func (s DocumentStatus) EvictionPriority() int {
	switch s {
	case StatusApproved:
		return 0
	case StatusRejected:
		return 1
	case StatusSubmitted:
		return 2
	default:
		return 3
	}
}

// Signer roles for the fixed signature slots on an attendance sheet.
const (
	SignerSchool                      = "school"
	SignerSession1MainInstructor      = "session1MainInstructor"
	SignerSession1AssistantInstructor = "session1AssistantInstructor"
	SignerSession2MainInstructor      = "session2MainInstructor"
	SignerSession2AssistantInstructor = "session2AssistantInstructor"
)

// SignerRoles lists every valid signature slot.
var SignerRoles = []string{
	SignerSchool,
	SignerSession1MainInstructor,
	SignerSession1AssistantInstructor,
	SignerSession2MainInstructor,
	SignerSession2AssistantInstructor,
}

type Signature struct {
	SignedByUserID    string    `json:"signedByUserId"`
	SignedByUserName  string    `json:"signedByUserName"`
	SignedAt          time.Time `json:"signedAt"`
	SignatureImageURL string    `json:"signatureImageUrl,omitempty"`
}

type InstitutionContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// SessionAttendance is one dated meeting of a training. Sessions holds the
// number of periods taught that day, the countable unit for attendance.
type SessionAttendance struct {
	SessionNumber       int      `json:"sessionNumber"`
	Date                string   `json:"date"` // YYYY-MM-DD
	StartTime           string   `json:"startTime"`
	EndTime             string   `json:"endTime"`
	Sessions            int      `json:"sessions"`
	MainInstructor      string   `json:"mainInstructor"`
	AssistantInstructor string   `json:"assistantInstructor,omitempty"`
	InstitutionContacts []string `json:"institutionContacts,omitempty"` // at most 2
	StudentCount        int      `json:"studentCount"`
	AttendanceCount     int      `json:"attendanceCount"`
}

// StudentAttendance tracks one student's per-session attendance in periods.
// SessionAttendances always has one entry per session of the owning
// document. CompletionStatus is derived, never entered.
type StudentAttendance struct {
	ID                 string `json:"id"`
	Number             int    `json:"number"`
	Name               string `json:"name"`
	Gender             string `json:"gender"` // '남' | '여'
	SessionAttendances []int  `json:"sessionAttendances"`
	CompletionStatus   string `json:"completionStatus"` // 'O' | 'X'
	IsTransferred      bool   `json:"isTransferred,omitempty"`
}

// AttendanceDocument is the attendance sheet for one education instance.
type AttendanceDocument struct {
	ID          string `json:"id"` // attendance-<educationId>
	EducationID string `json:"educationId"`

	Location      string `json:"location"`
	Institution   string `json:"institution"`
	GradeClass    string `json:"gradeClass"`
	ProgramName   string `json:"programName"`
	TotalSessions int    `json:"totalSessions"`
	MaleCount     int    `json:"maleCount"`
	FemaleCount   int    `json:"femaleCount"`

	InstitutionContact InstitutionContact    `json:"institutionContact"`
	Signatures         map[string]*Signature `json:"signatures,omitempty"`

	Sessions []SessionAttendance `json:"sessions"`
	Students []StudentAttendance `json:"students"`

	Status DocumentStatus `json:"status"`

	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
	SubmittedBy  string     `json:"submittedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy   string     `json:"approvedBy,omitempty"`
	RejectedAt   *time.Time `json:"rejectedAt,omitempty"`
	RejectedBy   string     `json:"rejectedBy,omitempty"`
	RejectReason string     `json:"rejectReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentIDPrefix is the current ID naming scheme. IDs persisted under an
// older scheme are treated as legacy data by the store.
const DocumentIDPrefix = "attendance-"

// DocumentID builds the canonical document ID for an education.
func DocumentID(educationID string) string {
	return DocumentIDPrefix + educationID
}

// CompletionStats summarises completion across the countable
// (non-transferred) students of a document.
type CompletionStats struct {
	TotalStudents     int `json:"totalStudents"`
	CompletedStudents int `json:"completedStudents"`
	CompletionRate    int `json:"completionRate"` // rounded percent
}
