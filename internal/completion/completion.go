// Package completion derives completion status and aggregate statistics
// from attendance counts. Pure computation, no I/O.
package completion

import (
	"math"

	"attendance-service/internal/model"
)

// Threshold is the attendance ratio a student must reach to complete a
// program. Exactly 80% qualifies.
const Threshold = 0.80

const (
	Completed    = "O"
	NotCompleted = "X"
)

// Status returns "O" when attendedSessions covers at least 80% of
// totalSessions, otherwise "X". A program with no declared sessions cannot
// certify completion, so totalSessions == 0 always yields "X".
func Status(attendedSessions, totalSessions int) string {
	if totalSessions == 0 {
		return NotCompleted
	}
	if float64(attendedSessions)/float64(totalSessions) >= Threshold {
		return Completed
	}
	return NotCompleted
}

// AttendedSessions sums a student's per-session attendance counts. Each
// session contributes up to that session's period count, not a binary
// present/absent.
func AttendedSessions(s model.StudentAttendance) int {
	total := 0
	for _, n := range s.SessionAttendances {
		total += n
	}
	return total
}

// Recompute derives one student's completion status against the document's
// declared total session count. The denominator is deliberately the
// document's TotalSessions, not the number of sessions currently entered,
// so incremental data entry does not flip statuses as sessions are added.
// Transferred students never carry a status; the UI shows N/A.
func Recompute(s *model.StudentAttendance, totalSessions int) {
	if s.IsTransferred {
		s.CompletionStatus = ""
		return
	}
	s.CompletionStatus = Status(AttendedSessions(*s), totalSessions)
}

// Stats aggregates completion across a document's students. Transferred
// students are excluded from every figure: they are neither completed nor
// incomplete, and do not inflate the rate denominator.
func Stats(students []model.StudentAttendance) model.CompletionStats {
	var stats model.CompletionStats
	for _, s := range students {
		if s.IsTransferred {
			continue
		}
		stats.TotalStudents++
		if s.CompletionStatus == Completed {
			stats.CompletedStudents++
		}
	}
	if stats.TotalStudents > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedStudents) / float64(stats.TotalStudents) * 100))
	}
	return stats
}
