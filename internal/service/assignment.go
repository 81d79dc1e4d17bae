package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"attendance-service/internal/i18n"
	"attendance-service/internal/model"
	"attendance-service/internal/store"
)

// DailyLimit carries the fallback chain for per-day assignment counting: a
// per-instructor override (on the instructor record) falls back to the
// global default.
type DailyLimit struct {
	GlobalDefault int `json:"globalDefault"`
}

// Limits is the capacity rule input for one validation call.
type Limits struct {
	MonthlyCapacity int        `json:"monthlyCapacity"`
	DailyLimit      DailyLimit `json:"dailyLimit"`
}

// ValidationResult reports one (session, instructor) validation outcome.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// AssignmentValidator is the capacity-rule engine contract. The rule
// internals are owned elsewhere; this service only requires that every
// proposed assignment is validated before any is committed.
type AssignmentValidator interface {
	Validate(ctx context.Context, instructor model.Instructor, education model.Education,
		role model.AssignmentRole, limits Limits, excludeEducationID string) ValidationResult
}

// CapacityProvider supplies the configured capacity facts.
type CapacityProvider interface {
	DefaultMonthlyCapacity() int
	GlobalDailyLimit() int
}

// StaticCapacity is a CapacityProvider over fixed configuration values.
type StaticCapacity struct {
	Monthly int
	Daily   int
}

func (c StaticCapacity) DefaultMonthlyCapacity() int { return c.Monthly }
func (c StaticCapacity) GlobalDailyLimit() int       { return c.Daily }

// AssignmentProposal is one (session date, instructor, role) binding an
// admin wants to commit.
type AssignmentProposal struct {
	Instructor model.Instructor     `json:"instructor"`
	Role       model.AssignmentRole `json:"role"`
	Date       string               `json:"date"` // session date, YYYY-MM-DD
}

// BatchValidationError aggregates every failed validation of a batch. A
// single failure blocks the whole batch, but all reasons are collected and
// reported together instead of failing fast.
type BatchValidationError struct {
	Reasons []string
}

func (e *BatchValidationError) Error() string {
	return "assignment blocked: " + strings.Join(e.Reasons, "; ")
}

// AssignmentService commits instructor assignments all-or-nothing after
// validating every proposal in the batch.
type AssignmentService struct {
	educations *store.EducationDirectory
	validator  AssignmentValidator
	capacity   CapacityProvider

	mu          sync.Mutex
	assignments []model.InstructorAssignment
}

// NewAssignmentService wires the capacity rule engine. A nil validator
// installs the baseline CapacityValidator counting against this service's
// own committed assignments.
func NewAssignmentService(educations *store.EducationDirectory, validator AssignmentValidator, capacity CapacityProvider) *AssignmentService {
	s := &AssignmentService{educations: educations, validator: validator, capacity: capacity}
	if s.validator == nil {
		s.validator = &CapacityValidator{Ledger: s}
	}
	return s
}

// AssignInstructors validates the whole batch, collecting every failure
// reason; nothing is committed unless every proposal passes.
// excludeEducationID (usually the education being re-assigned) is removed
// from the validator's counting so an existing assignment does not block
// its own re-validation.
func (s *AssignmentService) AssignInstructors(ctx context.Context, educationID string, proposals []AssignmentProposal) ([]model.InstructorAssignment, error) {
	education := s.educations.GetByID(educationID)
	if education == nil {
		return nil, ErrEducationNotFound
	}

	var reasons []string
	for _, p := range proposals {
		limits := Limits{
			MonthlyCapacity: p.Instructor.MonthlyCapacity,
			DailyLimit:      DailyLimit{GlobalDefault: s.capacity.GlobalDailyLimit()},
		}
		if limits.MonthlyCapacity == 0 {
			limits.MonthlyCapacity = s.capacity.DefaultMonthlyCapacity()
		}
		result := s.validator.Validate(ctx, p.Instructor, *education, p.Role, limits, educationID)
		if !result.Valid {
			reasons = append(reasons, result.Reason)
		}
	}
	if len(reasons) > 0 {
		return nil, &BatchValidationError{Reasons: reasons}
	}

	now := time.Now()
	committed := make([]model.InstructorAssignment, 0, len(proposals))
	for _, p := range proposals {
		committed = append(committed, model.InstructorAssignment{
			ID:           uuid.NewString(),
			EducationID:  educationID,
			InstructorID: p.Instructor.ID,
			Role:         p.Role,
			Date:         p.Date,
			CreatedAt:    now,
		})
	}

	s.mu.Lock()
	s.assignments = append(s.assignments, committed...)
	s.mu.Unlock()

	return committed, nil
}

// Assignments returns the committed assignments, optionally filtered by
// education.
func (s *AssignmentService) Assignments(educationID string) []model.InstructorAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.InstructorAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if educationID == "" || a.EducationID == educationID {
			out = append(out, a)
		}
	}
	return out
}

// CountInMonth counts an instructor's committed assignments whose date
// falls in the given month (YYYY-MM), excluding one education.
func (s *AssignmentService) CountInMonth(instructorID, month, excludeEducationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, a := range s.assignments {
		if a.InstructorID == instructorID && a.EducationID != excludeEducationID && strings.HasPrefix(a.Date, month) {
			count++
		}
	}
	return count
}

// CountOnDate counts an instructor's committed assignments on one date,
// excluding one education.
func (s *AssignmentService) CountOnDate(instructorID, date, excludeEducationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, a := range s.assignments {
		if a.InstructorID == instructorID && a.EducationID != excludeEducationID && a.Date == date {
			count++
		}
	}
	return count
}

// ErrEducationNotFound is returned when the assignment target education is
// unknown.
var ErrEducationNotFound = errors.New("education not found")

// AssignmentLedger is what the baseline validator counts against.
type AssignmentLedger interface {
	CountInMonth(instructorID, month, excludeEducationID string) int
	CountOnDate(instructorID, date, excludeEducationID string) int
}

// CapacityValidator is the baseline rule engine. It enforces only what the
// admin screens rely on: the instructor's assignments in each session month
// stay under the monthly capacity, and assignments on each session date
// stay under the daily limit (per-instructor override first, then the
// global default).
type CapacityValidator struct {
	Ledger AssignmentLedger
}

func (v *CapacityValidator) Validate(ctx context.Context, instructor model.Instructor, education model.Education,
	role model.AssignmentRole, limits Limits, excludeEducationID string) ValidationResult {

	months := map[string]bool{}
	for _, date := range education.SessionDates {
		if len(date) >= 7 {
			months[date[:7]] = true
		}
	}
	for month := range months {
		if v.Ledger.CountInMonth(instructor.ID, month, excludeEducationID) >= limits.MonthlyCapacity {
			return ValidationResult{
				Valid: false,
				Reason: i18n.T(ctx, "assignment.monthly_capacity_exceeded", map[string]any{
					"Instructor": instructor.Name,
					"Limit":      limits.MonthlyCapacity,
				}),
			}
		}
	}

	dailyLimit := instructor.DailyLimit
	if dailyLimit == 0 {
		dailyLimit = limits.DailyLimit.GlobalDefault
	}
	for _, date := range education.SessionDates {
		if v.Ledger.CountOnDate(instructor.ID, date, excludeEducationID) >= dailyLimit {
			return ValidationResult{
				Valid: false,
				Reason: i18n.T(ctx, "assignment.daily_limit_exceeded", map[string]any{
					"Instructor": instructor.Name,
					"Limit":      dailyLimit,
					"Date":       date,
				}),
			}
		}
	}

	return ValidationResult{Valid: true}
}
