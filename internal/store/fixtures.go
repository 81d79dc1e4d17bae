package store

import (
	"fmt"
	"time"

	"attendance-service/internal/completion"
	"attendance-service/internal/model"
)

// fixtureSeed drives the 12 built-in example documents written on first
// access to an empty medium.
var fixtureSeed = []struct {
	educationID string
	institution string
	gradeClass  string
	program     string
	location    string
	status      model.DocumentStatus
	sessions    int
}{
	{"edu-001", "서울초등학교", "3학년 2반", "소프트웨어 기초교육", "서울특별시", model.StatusApproved, 8},
	{"edu-002", "부산중학교", "1학년 1반", "인공지능 체험교육", "부산광역시", model.StatusApproved, 10},
	{"edu-003", "대구초등학교", "5학년 3반", "코딩 심화교육", "대구광역시", model.StatusSubmitted, 8},
	{"edu-004", "인천중학교", "2학년 4반", "로봇 활용교육", "인천광역시", model.StatusSubmitted, 6},
	{"edu-005", "광주초등학교", "4학년 1반", "소프트웨어 기초교육", "광주광역시", model.StatusDraft, 8},
	{"edu-006", "대전중학교", "3학년 2반", "데이터 리터러시 교육", "대전광역시", model.StatusDraft, 10},
	{"edu-007", "울산초등학교", "6학년 2반", "인공지능 체험교육", "울산광역시", model.StatusRejected, 8},
	{"edu-008", "세종중학교", "1학년 3반", "코딩 심화교육", "세종특별자치시", model.StatusDraft, 6},
	{"edu-009", "수원초등학교", "2학년 1반", "소프트웨어 기초교육", "경기도", model.StatusSubmitted, 8},
	{"edu-010", "춘천중학교", "2학년 2반", "로봇 활용교육", "강원특별자치도", model.StatusDraft, 10},
	{"edu-011", "청주초등학교", "5학년 1반", "데이터 리터러시 교육", "충청북도", model.StatusApproved, 8},
	{"edu-012", "전주중학교", "3학년 1반", "인공지능 체험교육", "전북특별자치도", model.StatusDraft, 6},
}

var fixtureStudentNames = []string{
	"김민준", "이서연", "박도윤", "최지우", "정하은",
	"강시우", "조수아", "윤예준", "임지민", "한서준",
}

// FixtureDocuments builds the seed data set. Timestamps are spread
// backwards from now so list ordering and age cleanup behave realistically
// straight after seeding.
func FixtureDocuments(now time.Time) []model.AttendanceDocument {
	docs := make([]model.AttendanceDocument, 0, len(fixtureSeed))
	for i, seed := range fixtureSeed {
		created := now.AddDate(0, 0, -(len(fixtureSeed) - i))
		doc := model.AttendanceDocument{
			ID:            model.DocumentID(seed.educationID),
			EducationID:   seed.educationID,
			Location:      seed.location,
			Institution:   seed.institution,
			GradeClass:    seed.gradeClass,
			ProgramName:   seed.program,
			TotalSessions: seed.sessions,
			MaleCount:     5,
			FemaleCount:   5,
			InstitutionContact: model.InstitutionContact{
				Name:  "담당교사",
				Phone: "010-0000-0000",
				Email: fmt.Sprintf("contact@%s.kr", seed.educationID),
			},
			Sessions:  fixtureSessions(seed.sessions, created),
			Students:  fixtureStudents(seed.educationID, seed.sessions, i),
			Status:    seed.status,
			CreatedAt: created,
			UpdatedAt: created,
		}
		stampFixtureLifecycle(&doc, created)
		docs = append(docs, doc)
	}
	return docs
}

// fixtureSessions declares every session up front but only fills attendance
// for the first half, matching sheets that are mid-entry.
func fixtureSessions(count int, start time.Time) []model.SessionAttendance {
	sessions := make([]model.SessionAttendance, 0, count)
	for n := 1; n <= count; n++ {
		sessions = append(sessions, model.SessionAttendance{
			SessionNumber:  n,
			Date:           start.AddDate(0, 0, (n-1)*7).Format(time.DateOnly),
			StartTime:      "10:00",
			EndTime:        "12:00",
			Sessions:       2,
			MainInstructor: "강사" + fmt.Sprint((n%3)+1),
			StudentCount:   len(fixtureStudentNames),
		})
	}
	return sessions
}

func fixtureStudents(educationID string, sessionCount, variant int) []model.StudentAttendance {
	students := make([]model.StudentAttendance, 0, len(fixtureStudentNames))
	for i, name := range fixtureStudentNames {
		attendances := make([]int, sessionCount)
		// Every student attends the first half of the sessions; whether
		// that clears the 80% bar depends on the session count.
		for n := 0; n < sessionCount/2; n++ {
			attendances[n] = 1
		}
		gender := "남"
		if i%2 == 1 {
			gender = "여"
		}
		student := model.StudentAttendance{
			ID:                 fmt.Sprintf("%s-s%02d", educationID, i+1),
			Number:             i + 1,
			Name:               name,
			Gender:             gender,
			SessionAttendances: attendances,
		}
		// One transferred student per third document, excluded from
		// attendance-taking and completion accounting.
		if variant%3 == 2 && i == len(fixtureStudentNames)-1 {
			student.IsTransferred = true
			student.SessionAttendances = make([]int, sessionCount)
		}
		completion.Recompute(&student, sessionCount)
		students = append(students, student)
	}
	return students
}

func stampFixtureLifecycle(doc *model.AttendanceDocument, created time.Time) {
	switch doc.Status {
	case model.StatusSubmitted:
		t := created.AddDate(0, 0, 1)
		doc.SubmittedAt, doc.SubmittedBy = &t, "instructor-01"
	case model.StatusApproved:
		st := created.AddDate(0, 0, 1)
		at := created.AddDate(0, 0, 2)
		doc.SubmittedAt, doc.SubmittedBy = &st, "instructor-01"
		doc.ApprovedAt, doc.ApprovedBy = &at, "admin-01"
	case model.StatusRejected:
		st := created.AddDate(0, 0, 1)
		rt := created.AddDate(0, 0, 2)
		doc.SubmittedAt, doc.SubmittedBy = &st, "instructor-01"
		doc.RejectedAt, doc.RejectedBy = &rt, "admin-01"
		doc.RejectReason = "서명 누락"
	}
}
