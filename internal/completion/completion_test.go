package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"attendance-service/internal/model"
)

func TestStatus_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name     string
		attended int
		total    int
		want     string
	}{
		{"75 percent is short", 6, 8, NotCompleted},
		{"87.5 percent completes", 7, 8, Completed},
		{"exactly 80 percent completes", 4, 5, Completed},
		{"full attendance completes", 8, 8, Completed},
		{"zero attendance", 0, 8, NotCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.attended, tt.total))
		})
	}
}

func TestStatus_ZeroTotalSessions(t *testing.T) {
	// A program with no declared sessions can never certify completion,
	// whatever was entered.
	assert.Equal(t, NotCompleted, Status(0, 0))
	assert.Equal(t, NotCompleted, Status(5, 0))
}

func TestRecompute_UsesDeclaredTotal(t *testing.T) {
	s := model.StudentAttendance{SessionAttendances: []int{2, 2}}

	// Only two sessions entered so far, but the document declares five.
	Recompute(&s, 5)
	assert.Equal(t, Completed, s.CompletionStatus)

	Recompute(&s, 8)
	assert.Equal(t, NotCompleted, s.CompletionStatus)
}

func TestRecompute_TransferredStudentHasNoStatus(t *testing.T) {
	s := model.StudentAttendance{
		SessionAttendances: []int{4, 4},
		IsTransferred:      true,
	}
	Recompute(&s, 8)
	assert.Empty(t, s.CompletionStatus)
}

func TestStats_ExcludesTransferredStudents(t *testing.T) {
	students := []model.StudentAttendance{
		{Name: "김민준", CompletionStatus: Completed},
		{Name: "이서연", CompletionStatus: NotCompleted},
		{Name: "박도윤", IsTransferred: true},
	}

	stats := Stats(students)

	// The transferred student is not counted as incomplete; the rate is
	// over the two countable students.
	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, 1, stats.CompletedStudents)
	assert.Equal(t, 50, stats.CompletionRate)
}

func TestStats_EmptyRoster(t *testing.T) {
	stats := Stats(nil)
	assert.Zero(t, stats.TotalStudents)
	assert.Zero(t, stats.CompletionRate)
}

func TestStats_RateRounding(t *testing.T) {
	students := []model.StudentAttendance{
		{CompletionStatus: Completed},
		{CompletionStatus: Completed},
		{CompletionStatus: NotCompleted},
	}
	// 2/3 rounds to 67, not truncates to 66.
	assert.Equal(t, 67, Stats(students).CompletionRate)
}
