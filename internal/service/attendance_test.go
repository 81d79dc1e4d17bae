package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-service/internal/model"
	"attendance-service/internal/storage"
	"attendance-service/internal/store"
)

// newTestService builds a service over an empty (but already initialised)
// store so tests do not start from the fixture set.
func newTestService(t *testing.T) *AttendanceService {
	t.Helper()
	m := storage.NewMemoryMedium(0)
	require.NoError(t, m.Set("attendance-documents", []byte("[]")))
	st, err := store.NewAttendanceStore(m)
	require.NoError(t, err)
	return NewAttendanceService(st)
}

func testDocument() model.AttendanceDocument {
	return model.AttendanceDocument{
		EducationID:   "edu-777",
		Institution:   "서울초등학교",
		ProgramName:   "소프트웨어 기초교육",
		TotalSessions: 5,
		Sessions: []model.SessionAttendance{
			{SessionNumber: 1, Date: "2026-09-07", Sessions: 4, MainInstructor: "강사1"},
			{SessionNumber: 2, Date: "2026-09-14", Sessions: 4, MainInstructor: "강사1"},
		},
		Students: []model.StudentAttendance{
			{ID: "stu-1", Number: 1, Name: "김민준", Gender: "남"},
			{ID: "stu-2", Number: 2, Name: "이서연", Gender: "여"},
		},
	}
}

func TestSave_DerivesIDAndNormalises(t *testing.T) {
	svc := newTestService(t)

	doc, err := svc.Save(testDocument())
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "attendance-edu-777", doc.ID)
	assert.Equal(t, model.StatusDraft, doc.Status)
	for _, s := range doc.Students {
		assert.Len(t, s.SessionAttendances, 2)
		assert.Equal(t, "X", s.CompletionStatus)
	}
}

func TestRecordAttendance_EndToEnd(t *testing.T) {
	svc := newTestService(t)

	// First save creates the document as a draft.
	doc, err := svc.Save(testDocument())
	require.NoError(t, err)

	found, err := svc.Sheet("edu-777")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, doc.ID, found.ID)

	// 4 of 5 declared sessions is exactly 80%: the status flips to O.
	doc, err = svc.RecordAttendance(doc.ID, "stu-1", 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, doc.Students[0].SessionAttendances[0])
	assert.Equal(t, "O", doc.Students[0].CompletionStatus)
	assert.Equal(t, "X", doc.Students[1].CompletionStatus)

	// Submit and verify the audit stamp survived the round trip.
	doc, err = svc.Submit(doc.ID, "instructor-01")
	require.NoError(t, err)

	stored, err := svc.Get(doc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.StatusSubmitted, stored.Status)
	require.NotNil(t, stored.SubmittedAt)
	assert.Equal(t, "instructor-01", stored.SubmittedBy)
}

func TestRecordAttendance_Validation(t *testing.T) {
	svc := newTestService(t)
	base := testDocument()
	base.Students = append(base.Students, model.StudentAttendance{
		ID: "stu-3", Number: 3, Name: "박도윤", IsTransferred: true,
	})
	doc, err := svc.Save(base)
	require.NoError(t, err)

	_, err = svc.RecordAttendance("attendance-missing", "stu-1", 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.RecordAttendance(doc.ID, "stu-9", 1, 1)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = svc.RecordAttendance(doc.ID, "stu-3", 1, 1)
	assert.ErrorIs(t, err, ErrStudentTransferred)

	_, err = svc.RecordAttendance(doc.ID, "stu-1", 3, 1)
	assert.ErrorIs(t, err, ErrSessionOutOfRange)

	// Session 1 teaches 4 periods; 5 is out of range.
	_, err = svc.RecordAttendance(doc.ID, "stu-1", 1, 5)
	var periodsErr *PeriodsError
	require.ErrorAs(t, err, &periodsErr)
	assert.Equal(t, 4, periodsErr.Max)
}

func TestRecordAttendance_RejectedReturnsToDraft(t *testing.T) {
	svc := newTestService(t)
	doc, err := svc.Save(testDocument())
	require.NoError(t, err)

	_, err = svc.Submit(doc.ID, "instructor-01")
	require.NoError(t, err)
	_, err = svc.Reject(doc.ID, "admin-01", "서명 누락")
	require.NoError(t, err)

	doc, err = svc.RecordAttendance(doc.ID, "stu-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, doc.Status)
	// Rejection audit is history, not state; it stays on the document.
	assert.NotNil(t, doc.RejectedAt)
}

func TestLifecycleGuards(t *testing.T) {
	svc := newTestService(t)
	doc, err := svc.Save(testDocument())
	require.NoError(t, err)

	// Approving an unsubmitted draft is rejected.
	_, err = svc.Approve(doc.ID, "admin-01")
	assert.ErrorIs(t, err, ErrNotSubmitted)

	_, err = svc.Submit(doc.ID, "instructor-01")
	require.NoError(t, err)

	_, err = svc.Submit(doc.ID, "instructor-01")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	_, err = svc.Approve(doc.ID, "admin-01")
	require.NoError(t, err)

	_, err = svc.Reject(doc.ID, "admin-01", "too late")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	_, err = svc.Submit(doc.ID, "instructor-01")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestApplyRoster_PreservesRecordedAttendance(t *testing.T) {
	svc := newTestService(t)
	base := testDocument()
	base.Students = []model.StudentAttendance{
		{ID: "stu-1", Number: 1, Name: "Kim", SessionAttendances: []int{4, 4}},
	}
	doc, err := svc.Save(base)
	require.NoError(t, err)

	doc, err = svc.ApplyRoster(doc.ID, model.RosterSheet{
		EducationID: "edu-777",
		Status:      model.RosterSheetSentToInstructor,
		Entries: []model.RosterEntry{
			{Number: 1, Name: "Kim"},
			{Number: 2, Name: "Lee", Gender: "여"},
		},
	})
	require.NoError(t, err)

	require.Len(t, doc.Students, 2)
	// The re-supplied blank entry did not overwrite recorded attendance.
	assert.Equal(t, []int{4, 4}, doc.Students[0].SessionAttendances)
	// The new entry arrives with zeroed attendance sized to the sessions.
	assert.Equal(t, "Lee", doc.Students[1].Name)
	assert.Equal(t, []int{0, 0}, doc.Students[1].SessionAttendances)
	assert.NotEmpty(t, doc.Students[1].ID)
}

func TestApplyRoster_NeverRemovesStudents(t *testing.T) {
	svc := newTestService(t)
	doc, err := svc.Save(testDocument())
	require.NoError(t, err)

	// The refreshed roster no longer lists stu-2; the existing list is
	// only supplemented, never replaced.
	doc, err = svc.ApplyRoster(doc.ID, model.RosterSheet{
		Entries: []model.RosterEntry{{Number: 1, Name: "김민준"}},
	})
	require.NoError(t, err)
	assert.Len(t, doc.Students, 2)
}

func TestApplyRoster_AbsorbsSessionsAndResizesRows(t *testing.T) {
	svc := newTestService(t)
	doc, err := svc.Save(testDocument())
	require.NoError(t, err)
	_, err = svc.RecordAttendance(doc.ID, "stu-1", 1, 4)
	require.NoError(t, err)

	doc, err = svc.ApplyRoster(doc.ID, model.RosterSheet{
		Sessions: []model.SessionAttendance{
			{SessionNumber: 1, Date: "2026-09-07", Sessions: 4},
			{SessionNumber: 2, Date: "2026-09-14", Sessions: 4},
			{SessionNumber: 3, Date: "2026-09-21", Sessions: 4},
		},
	})
	require.NoError(t, err)

	require.Len(t, doc.Sessions, 3)
	for _, s := range doc.Students {
		assert.Len(t, s.SessionAttendances, 3)
	}
	// Recorded attendance survived the resize.
	assert.Equal(t, 4, doc.Students[0].SessionAttendances[0])
}

func TestApplyRoster_EducationMismatch(t *testing.T) {
	svc := newTestService(t)
	doc, err := svc.Save(testDocument())
	require.NoError(t, err)

	_, err = svc.ApplyRoster(doc.ID, model.RosterSheet{EducationID: "edu-999"})
	assert.ErrorIs(t, err, ErrEducationMismatch)
}

func TestSign(t *testing.T) {
	svc := newTestService(t)
	doc, err := svc.Save(testDocument())
	require.NoError(t, err)

	doc, err = svc.Sign(doc.ID, model.SignerSession1MainInstructor, model.Signature{
		SignedByUserID:   "instructor-01",
		SignedByUserName: "강사1",
	})
	require.NoError(t, err)
	sig := doc.Signatures[model.SignerSession1MainInstructor]
	require.NotNil(t, sig)
	assert.False(t, sig.SignedAt.IsZero())

	_, err = svc.Sign(doc.ID, "principal", model.Signature{SignedByUserID: "x"})
	assert.ErrorIs(t, err, ErrInvalidSignerRole)
}

func TestStats(t *testing.T) {
	svc := newTestService(t)
	base := testDocument()
	base.Students = append(base.Students, model.StudentAttendance{
		ID: "stu-3", Number: 3, Name: "박도윤", IsTransferred: true,
	})
	doc, err := svc.Save(base)
	require.NoError(t, err)
	_, err = svc.RecordAttendance(doc.ID, "stu-1", 1, 4)
	require.NoError(t, err)

	stats, err := svc.Stats(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalStudents)
	assert.Equal(t, 1, stats.CompletedStudents)
	assert.Equal(t, 50, stats.CompletionRate)
}
