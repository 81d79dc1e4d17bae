package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"attendance-service/internal/i18n"
	"attendance-service/internal/model"
	"attendance-service/internal/service"
	"attendance-service/internal/store"
)

var validate = validator.New()

type AttendanceHandler struct {
	svc *service.AttendanceService
}

func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// SaveRequest is the upsert payload. The ID is derived from the education
// when omitted.
type SaveRequest struct {
	ID            string                    `json:"id"`
	EducationID   string                    `json:"educationId" validate:"required"`
	Location      string                    `json:"location"`
	Institution   string                    `json:"institution" validate:"required"`
	GradeClass    string                    `json:"gradeClass"`
	ProgramName   string                    `json:"programName" validate:"required"`
	TotalSessions int                       `json:"totalSessions" validate:"gte=0"`
	MaleCount     int                       `json:"maleCount" validate:"gte=0"`
	FemaleCount   int                       `json:"femaleCount" validate:"gte=0"`
	Contact       model.InstitutionContact  `json:"institutionContact"`
	Sessions      []model.SessionAttendance `json:"sessions"`
	Students      []model.StudentAttendance `json:"students"`
	Status        model.DocumentStatus      `json:"status" validate:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED"`
}

type RecordAttendanceRequest struct {
	StudentID     string `json:"studentId" validate:"required"`
	SessionNumber int    `json:"sessionNumber" validate:"gte=1"`
	Periods       int    `json:"periods" validate:"gte=0"`
}

type ActorRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type RejectRequest struct {
	UserID string `json:"userId" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

type SignRequest struct {
	Role              string `json:"role" validate:"required"`
	SignedByUserID    string `json:"signedByUserId" validate:"required"`
	SignedByUserName  string `json:"signedByUserName" validate:"required"`
	SignatureImageURL string `json:"signatureImageUrl"`
}

func (h *AttendanceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, docs)
}

func (h *AttendanceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if doc == nil {
		writeNotFound(w, r, "attendance.not_found")
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleGetByEducation(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Sheet(r.PathValue("educationId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if doc == nil {
		writeNotFound(w, r, "attendance.not_found")
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decodeValid(w, r, &req) {
		return
	}

	doc, err := h.svc.Save(model.AttendanceDocument{
		ID:                 req.ID,
		EducationID:        req.EducationID,
		Location:           req.Location,
		Institution:        req.Institution,
		GradeClass:         req.GradeClass,
		ProgramName:        req.ProgramName,
		TotalSessions:      req.TotalSessions,
		MaleCount:          req.MaleCount,
		FemaleCount:        req.FemaleCount,
		InstitutionContact: req.Contact,
		Sessions:           req.Sessions,
		Students:           req.Students,
		Status:             req.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AttendanceHandler) HandleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req RecordAttendanceRequest
	if !decodeValid(w, r, &req) {
		return
	}
	doc, err := h.svc.RecordAttendance(r.PathValue("id"), req.StudentID, req.SessionNumber, req.Periods)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleApplyRoster(w http.ResponseWriter, r *http.Request) {
	var sheet model.RosterSheet
	if err := json.NewDecoder(r.Body).Decode(&sheet); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	doc, err := h.svc.ApplyRoster(r.PathValue("id"), sheet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !decodeValid(w, r, &req) {
		return
	}
	doc, err := h.svc.Submit(r.PathValue("id"), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !decodeValid(w, r, &req) {
		return
	}
	doc, err := h.svc.Approve(r.PathValue("id"), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if !decodeValid(w, r, &req) {
		return
	}
	doc, err := h.svc.Reject(r.PathValue("id"), req.UserID, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleSign(w http.ResponseWriter, r *http.Request) {
	var req SignRequest
	if !decodeValid(w, r, &req) {
		return
	}
	doc, err := h.svc.Sign(r.PathValue("id"), req.Role, model.Signature{
		SignedByUserID:    req.SignedByUserID,
		SignedByUserName:  req.SignedByUserName,
		SignatureImageURL: req.SignatureImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

func (h *AttendanceHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (h *AttendanceHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// RegisterRoutes registers all attendance routes on the given mux.
func (h *AttendanceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/attendance", h.HandleList)
	mux.HandleFunc("GET /api/attendance/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/attendance/{id}", h.HandleGet)
	mux.HandleFunc("GET /api/attendance/by-education/{educationId}", h.HandleGetByEducation)
	mux.HandleFunc("PUT /api/attendance", h.HandleSave)
	mux.HandleFunc("DELETE /api/attendance/{id}", h.HandleDelete)
	mux.HandleFunc("POST /api/attendance/{id}/attendance", h.HandleRecordAttendance)
	mux.HandleFunc("POST /api/attendance/{id}/roster", h.HandleApplyRoster)
	mux.HandleFunc("POST /api/attendance/{id}/submit", h.HandleSubmit)
	mux.HandleFunc("POST /api/attendance/{id}/approve", h.HandleApprove)
	mux.HandleFunc("POST /api/attendance/{id}/reject", h.HandleReject)
	mux.HandleFunc("POST /api/attendance/{id}/sign", h.HandleSign)
	mux.HandleFunc("GET /api/attendance/{id}/stats", h.HandleStats)
}

func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR encoding response: %v", err)
	}
}

func writeNotFound(w http.ResponseWriter, r *http.Request, messageID string) {
	writeJSONStatus(w, http.StatusNotFound, map[string]string{"error": i18n.T(r.Context(), messageID)})
}

// writeError maps service and store errors to HTTP responses. Quota
// exhaustion and validation failures carry descriptive localised messages;
// anything unexpected is logged and surfaced as a generic failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var periodsErr *service.PeriodsError
	var batchErr *service.BatchValidationError

	switch {
	case errors.Is(err, service.ErrNotFound):
		writeNotFound(w, r, "attendance.not_found")
	case errors.Is(err, service.ErrStudentNotFound):
		writeNotFound(w, r, "attendance.student_not_found")
	case errors.Is(err, service.ErrEducationNotFound):
		writeNotFound(w, r, "assignment.education_not_found")
	case errors.Is(err, service.ErrStudentTransferred):
		writeJSONStatus(w, http.StatusConflict, map[string]string{"error": i18n.T(ctx, "attendance.student_transferred")})
	case errors.Is(err, service.ErrSessionOutOfRange):
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": i18n.T(ctx, "attendance.session_out_of_range")})
	case errors.Is(err, service.ErrAlreadySubmitted):
		writeJSONStatus(w, http.StatusConflict, map[string]string{"error": i18n.T(ctx, "attendance.already_submitted")})
	case errors.Is(err, service.ErrNotSubmitted):
		writeJSONStatus(w, http.StatusConflict, map[string]string{"error": i18n.T(ctx, "attendance.not_submitted")})
	case errors.Is(err, service.ErrAlreadyFinalized):
		writeJSONStatus(w, http.StatusConflict, map[string]string{"error": i18n.T(ctx, "attendance.already_finalized")})
	case errors.Is(err, service.ErrInvalidSignerRole):
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": i18n.T(ctx, "attendance.invalid_signer_role")})
	case errors.Is(err, service.ErrEducationMismatch):
		writeJSONStatus(w, http.StatusConflict, map[string]string{"error": i18n.T(ctx, "roster.education_mismatch")})
	case errors.As(err, &periodsErr):
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{
			"error": i18n.T(ctx, "attendance.periods_exceed_session", map[string]any{"Max": periodsErr.Max}),
		})
	case errors.As(err, &batchErr):
		writeJSONStatus(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   i18n.T(ctx, "assignment.blocked"),
			"reasons": batchErr.Reasons,
		})
	case errors.Is(err, store.ErrStorageFull):
		writeJSONStatus(w, http.StatusInsufficientStorage, map[string]string{"error": i18n.T(ctx, "storage.quota_exceeded")})
	default:
		log.Printf("ERROR %s %s: %v", r.Method, r.URL.Path, err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": i18n.T(ctx, "storage.save_failed")})
	}
}
