package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"attendance-service/internal/completion"
	"attendance-service/internal/model"
	"attendance-service/internal/store"
)

// Sentinel errors the handler layer maps to localised user messages.
var (
	ErrNotFound           = errors.New("attendance document not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrStudentTransferred = errors.New("student is transferred")
	ErrSessionOutOfRange  = errors.New("session number out of range")
	ErrAlreadySubmitted   = errors.New("document already submitted")
	ErrNotSubmitted       = errors.New("document is not submitted")
	ErrAlreadyFinalized   = errors.New("document already finalized")
	ErrInvalidSignerRole  = errors.New("invalid signer role")
	ErrEducationMismatch  = errors.New("roster sheet belongs to a different education")
)

// PeriodsError rejects an attendance count above the periods taught in that
// session.
type PeriodsError struct {
	Max int
}

func (e *PeriodsError) Error() string {
	return fmt.Sprintf("attendance exceeds the %d periods taught in this session", e.Max)
}

type AttendanceService struct {
	store *store.AttendanceStore
	now   func() time.Time
}

func NewAttendanceService(store *store.AttendanceStore) *AttendanceService {
	return &AttendanceService{store: store, now: time.Now}
}

// List returns every stored document.
func (s *AttendanceService) List() ([]model.AttendanceDocument, error) {
	return s.store.GetAll()
}

// Get returns one document by ID, or nil when absent.
func (s *AttendanceService) Get(docID string) (*model.AttendanceDocument, error) {
	return s.store.GetByID(docID)
}

// Sheet loads the attendance document for an education. A nil result means
// the instructor has not saved a sheet yet; that is a valid state.
func (s *AttendanceService) Sheet(educationID string) (*model.AttendanceDocument, error) {
	return s.store.GetByEducationID(educationID)
}

// Save normalises and persists a full document, creating it on first save.
// Per-student attendance rows are resized to the session count and every
// completion status is recomputed before the write.
func (s *AttendanceService) Save(doc model.AttendanceDocument) (*model.AttendanceDocument, error) {
	if doc.ID == "" {
		doc.ID = model.DocumentID(doc.EducationID)
	}
	if doc.Status == "" {
		doc.Status = model.StatusDraft
	}
	normalizeStudents(&doc)
	if err := s.store.Upsert(doc); err != nil {
		return nil, err
	}
	return s.store.GetByID(doc.ID)
}

// RecordAttendance sets one student's attendance for one session (1-based)
// and synchronously recomputes that student's completion status against the
// document's declared total session count. Editing a rejected document
// returns it to draft so it can be resubmitted.
func (s *AttendanceService) RecordAttendance(docID, studentID string, sessionNumber, periods int) (*model.AttendanceDocument, error) {
	doc, err := s.store.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	if sessionNumber < 1 || sessionNumber > len(doc.Sessions) {
		return nil, ErrSessionOutOfRange
	}
	session := doc.Sessions[sessionNumber-1]
	if periods < 0 || periods > session.Sessions {
		return nil, &PeriodsError{Max: session.Sessions}
	}

	student := findStudent(doc, studentID)
	if student == nil {
		return nil, ErrStudentNotFound
	}
	if student.IsTransferred {
		return nil, ErrStudentTransferred
	}

	resizeAttendances(student, len(doc.Sessions))
	student.SessionAttendances[sessionNumber-1] = periods
	completion.Recompute(student, doc.TotalSessions)

	if doc.Status == model.StatusRejected {
		doc.Status = model.StatusDraft
	}

	if err := s.store.Upsert(*doc); err != nil {
		return nil, err
	}
	return s.store.GetByID(docID)
}

// ApplyRoster merges a teacher-submitted roster sheet into the document.
// Recorded attendance outranks the incoming snapshot: existing students
// (matched on number and name) are kept untouched, new ones are appended
// with zeroed attendance, and nothing is ever removed.
func (s *AttendanceService) ApplyRoster(docID string, sheet model.RosterSheet) (*model.AttendanceDocument, error) {
	doc, err := s.store.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	if sheet.EducationID != "" && sheet.EducationID != doc.EducationID {
		return nil, ErrEducationMismatch
	}

	if len(sheet.Sessions) > 0 {
		doc.Sessions = sheet.Sessions
	}

	for _, entry := range sheet.Entries {
		if existing := findStudentByRoster(doc, entry.Number, entry.Name); existing != nil {
			continue
		}
		student := model.StudentAttendance{
			ID:                 uuid.NewString(),
			Number:             entry.Number,
			Name:               entry.Name,
			Gender:             entry.Gender,
			SessionAttendances: make([]int, len(doc.Sessions)),
			IsTransferred:      entry.IsTransferred,
		}
		completion.Recompute(&student, doc.TotalSessions)
		doc.Students = append(doc.Students, student)
	}

	normalizeStudents(doc)

	if err := s.store.Upsert(*doc); err != nil {
		return nil, err
	}
	return s.store.GetByID(docID)
}

// Submit moves a draft (or re-edited rejected) document to SUBMITTED.
func (s *AttendanceService) Submit(docID, userID string) (*model.AttendanceDocument, error) {
	doc, err := s.store.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	switch doc.Status {
	case model.StatusSubmitted:
		return nil, ErrAlreadySubmitted
	case model.StatusApproved:
		return nil, ErrAlreadyFinalized
	}

	now := s.now()
	doc.Status = model.StatusSubmitted
	doc.SubmittedAt = &now
	doc.SubmittedBy = userID

	if err := s.store.Upsert(*doc); err != nil {
		return nil, err
	}
	return s.store.GetByID(docID)
}

// Approve finalises a submitted document.
func (s *AttendanceService) Approve(docID, userID string) (*model.AttendanceDocument, error) {
	doc, err := s.submittedDoc(docID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc.Status = model.StatusApproved
	doc.ApprovedAt = &now
	doc.ApprovedBy = userID

	if err := s.store.Upsert(*doc); err != nil {
		return nil, err
	}
	return s.store.GetByID(docID)
}

// Reject sends a submitted document back to the instructor with a reason.
// The next instructor edit returns it to DRAFT.
func (s *AttendanceService) Reject(docID, userID, reason string) (*model.AttendanceDocument, error) {
	doc, err := s.submittedDoc(docID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc.Status = model.StatusRejected
	doc.RejectedAt = &now
	doc.RejectedBy = userID
	doc.RejectReason = reason

	if err := s.store.Upsert(*doc); err != nil {
		return nil, err
	}
	return s.store.GetByID(docID)
}

// Sign records a signature in one of the five fixed signer slots.
func (s *AttendanceService) Sign(docID, role string, sig model.Signature) (*model.AttendanceDocument, error) {
	if !validSignerRole(role) {
		return nil, ErrInvalidSignerRole
	}
	doc, err := s.store.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	if sig.SignedAt.IsZero() {
		sig.SignedAt = s.now()
	}
	if doc.Signatures == nil {
		doc.Signatures = map[string]*model.Signature{}
	}
	doc.Signatures[role] = &sig

	if err := s.store.Upsert(*doc); err != nil {
		return nil, err
	}
	return s.store.GetByID(docID)
}

// Delete removes a document unconditionally. Deleting an unknown ID is a
// no-op, matching the admin delete semantics.
func (s *AttendanceService) Delete(docID string) error {
	return s.store.Delete(docID)
}

// Stats returns the completion statistics for one document.
func (s *AttendanceService) Stats(docID string) (model.CompletionStats, error) {
	doc, err := s.store.GetByID(docID)
	if err != nil {
		return model.CompletionStats{}, err
	}
	if doc == nil {
		return model.CompletionStats{}, ErrNotFound
	}
	return completion.Stats(doc.Students), nil
}

// Summary counts documents per lifecycle status for dashboard screens.
func (s *AttendanceService) Summary() (map[model.DocumentStatus]int, error) {
	docs, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}
	summary := map[model.DocumentStatus]int{}
	for _, d := range docs {
		summary[d.Status]++
	}
	return summary, nil
}

func (s *AttendanceService) submittedDoc(docID string) (*model.AttendanceDocument, error) {
	doc, err := s.store.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	switch doc.Status {
	case model.StatusSubmitted:
		return doc, nil
	case model.StatusApproved, model.StatusRejected:
		return nil, ErrAlreadyFinalized
	default:
		return nil, ErrNotSubmitted
	}
}

// normalizeStudents enforces the row-length invariant (one attendance entry
// per session) and recomputes every non-transferred completion status.
func normalizeStudents(doc *model.AttendanceDocument) {
	for i := range doc.Students {
		resizeAttendances(&doc.Students[i], len(doc.Sessions))
		completion.Recompute(&doc.Students[i], doc.TotalSessions)
	}
}

func resizeAttendances(s *model.StudentAttendance, sessionCount int) {
	switch {
	case len(s.SessionAttendances) < sessionCount:
		padded := make([]int, sessionCount)
		copy(padded, s.SessionAttendances)
		s.SessionAttendances = padded
	case len(s.SessionAttendances) > sessionCount:
		s.SessionAttendances = s.SessionAttendances[:sessionCount]
	}
}

func findStudent(doc *model.AttendanceDocument, id string) *model.StudentAttendance {
	for i := range doc.Students {
		if doc.Students[i].ID == id {
			return &doc.Students[i]
		}
	}
	return nil
}

func findStudentByRoster(doc *model.AttendanceDocument, number int, name string) *model.StudentAttendance {
	for i := range doc.Students {
		if doc.Students[i].Number == number && doc.Students[i].Name == name {
			return &doc.Students[i]
		}
	}
	return nil
}

func validSignerRole(role string) bool {
	for _, r := range model.SignerRoles {
		if r == role {
			return true
		}
	}
	return false
}
