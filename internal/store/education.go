package store

import (
	"time"

	"attendance-service/internal/model"
)

// EducationDirectory is the read-only lookup for education instances. This
// service does not own educations (the admin training module does); the
// directory is seeded once at startup and only ever read.
type EducationDirectory struct {
	educations []model.Education
}

func NewEducationDirectory(educations []model.Education) *EducationDirectory {
	if educations == nil {
		educations = FixtureEducations()
	}
	return &EducationDirectory{educations: educations}
}

// GetByID returns the education, or nil when absent. Absence is a valid
// state for callers.
func (d *EducationDirectory) GetByID(id string) *model.Education {
	for i := range d.educations {
		if d.educations[i].ID == id {
			return &d.educations[i]
		}
	}
	return nil
}

// List returns every known education.
func (d *EducationDirectory) List() []model.Education {
	out := make([]model.Education, len(d.educations))
	copy(out, d.educations)
	return out
}

// FixtureEducations mirrors the attendance fixture set so every seeded
// document resolves to an education. Session dates are weekly starting from
// the first Monday after seeding.
func FixtureEducations() []model.Education {
	start := nextMonday(time.Now())
	educations := make([]model.Education, 0, len(fixtureSeed))
	for _, seed := range fixtureSeed {
		dates := make([]string, 0, seed.sessions)
		for n := 0; n < seed.sessions; n++ {
			dates = append(dates, start.AddDate(0, 0, n*7).Format(time.DateOnly))
		}
		status := model.EducationStatusAssigned
		if seed.status == model.StatusApproved {
			status = model.EducationStatusCompleted
		}
		educations = append(educations, model.Education{
			ID:                   seed.educationID,
			ProgramName:          seed.program,
			Institution:          seed.institution,
			Region:               seed.location,
			RegionAssignmentMode: "local",
			ApplicationDeadline:  start.AddDate(0, 0, -7).Format(time.DateOnly),
			Status:               status,
			SessionDates:         dates,
			TotalSessions:        seed.sessions,
		})
	}
	return educations
}

func nextMonday(t time.Time) time.Time {
	days := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days)
}
