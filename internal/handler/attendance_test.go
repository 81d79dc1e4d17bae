package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-service/internal/model"
	"attendance-service/internal/service"
	"attendance-service/internal/storage"
	"attendance-service/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := storage.NewMemoryMedium(0)
	require.NoError(t, m.Set("attendance-documents", []byte("[]")))
	st, err := store.NewAttendanceStore(m)
	require.NoError(t, err)

	educations := store.NewEducationDirectory([]model.Education{
		{ID: "edu-777", ProgramName: "소프트웨어 기초교육", SessionDates: []string{"2026-09-07"}},
	})

	mux := http.NewServeMux()
	NewAttendanceHandler(service.NewAttendanceService(st)).RegisterRoutes(mux)
	NewAssignmentHandler(
		service.NewAssignmentService(educations, nil, service.StaticCapacity{Monthly: 10, Daily: 2}),
		educations,
	).RegisterRoutes(mux)

	srv := httptest.NewServer(LocaleMiddleware(mux))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAttendanceAPI_SaveAndFetch(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.Client(), http.MethodPut, srv.URL+"/api/attendance", map[string]any{
		"educationId":   "edu-777",
		"institution":   "서울초등학교",
		"programName":   "소프트웨어 기초교육",
		"totalSessions": 5,
		"sessions": []map[string]any{
			{"sessionNumber": 1, "date": "2026-09-07", "sessions": 4, "mainInstructor": "강사1"},
		},
		"students": []map[string]any{
			{"id": "stu-1", "number": 1, "name": "김민준", "gender": "남"},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc model.AttendanceDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "attendance-edu-777", doc.ID)
	assert.Equal(t, model.StatusDraft, doc.Status)

	getResp, err := srv.Client().Get(srv.URL + "/api/attendance/attendance-edu-777")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	byEdu, err := srv.Client().Get(srv.URL + "/api/attendance/by-education/edu-777")
	require.NoError(t, err)
	defer byEdu.Body.Close()
	assert.Equal(t, http.StatusOK, byEdu.StatusCode)
}

func TestAttendanceAPI_ValidationAndNotFound(t *testing.T) {
	srv := newTestServer(t)

	// Missing required fields fails DTO validation.
	resp := postJSON(t, srv.Client(), http.MethodPut, srv.URL+"/api/attendance", map[string]any{
		"location": "서울특별시",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	getResp, err := srv.Client().Get(srv.URL + "/api/attendance/attendance-missing")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestAttendanceAPI_RecordAndStats(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.Client(), http.MethodPut, srv.URL+"/api/attendance", map[string]any{
		"educationId":   "edu-777",
		"institution":   "서울초등학교",
		"programName":   "소프트웨어 기초교육",
		"totalSessions": 5,
		"sessions": []map[string]any{
			{"sessionNumber": 1, "date": "2026-09-07", "sessions": 4, "mainInstructor": "강사1"},
		},
		"students": []map[string]any{
			{"id": "stu-1", "number": 1, "name": "김민준", "gender": "남"},
		},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rec := postJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/attendance/attendance-edu-777/attendance", map[string]any{
		"studentId":     "stu-1",
		"sessionNumber": 1,
		"periods":       4,
	})
	defer rec.Body.Close()
	require.Equal(t, http.StatusOK, rec.StatusCode)

	statsResp, err := srv.Client().Get(srv.URL + "/api/attendance/attendance-edu-777/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()
	require.Equal(t, http.StatusOK, statsResp.StatusCode)

	var stats model.CompletionStats
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalStudents)
	assert.Equal(t, 1, stats.CompletedStudents)
	assert.Equal(t, 100, stats.CompletionRate)
}

func TestAssignmentAPI_AllOrNothing(t *testing.T) {
	srv := newTestServer(t)

	ok := postJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/assignments", map[string]any{
		"educationId": "edu-777",
		"proposals": []map[string]any{
			{"instructor": map[string]any{"id": "ins-1", "name": "강사1"}, "role": "main", "date": "2026-09-07"},
		},
	})
	defer ok.Body.Close()
	assert.Equal(t, http.StatusCreated, ok.StatusCode)

	missing := postJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/assignments", map[string]any{
		"educationId": "edu-999",
		"proposals": []map[string]any{
			{"instructor": map[string]any{"id": "ins-1", "name": "강사1"}, "role": "main", "date": "2026-09-07"},
		},
	})
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
