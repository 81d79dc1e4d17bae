package handler

import (
	"net/http"

	"attendance-service/internal/service"
	"attendance-service/internal/store"
)

type AssignmentHandler struct {
	svc        *service.AssignmentService
	educations *store.EducationDirectory
}

func NewAssignmentHandler(svc *service.AssignmentService, educations *store.EducationDirectory) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, educations: educations}
}

// AssignRequest proposes a batch of instructor assignments for one
// education. The batch is committed all-or-nothing.
type AssignRequest struct {
	EducationID string                       `json:"educationId" validate:"required"`
	Proposals   []service.AssignmentProposal `json:"proposals" validate:"required,min=1,dive"`
}

func (h *AssignmentHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if !decodeValid(w, r, &req) {
		return
	}
	committed, err := h.svc.AssignInstructors(r.Context(), req.EducationID, req.Proposals)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, committed)
}

func (h *AssignmentHandler) HandleListAssignments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Assignments(r.URL.Query().Get("educationId")))
}

func (h *AssignmentHandler) HandleListEducations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.educations.List())
}

func (h *AssignmentHandler) HandleGetEducation(w http.ResponseWriter, r *http.Request) {
	education := h.educations.GetByID(r.PathValue("id"))
	if education == nil {
		writeNotFound(w, r, "assignment.education_not_found")
		return
	}
	writeJSON(w, education)
}

// RegisterRoutes registers assignment and education routes on the mux.
func (h *AssignmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/assignments", h.HandleAssign)
	mux.HandleFunc("GET /api/assignments", h.HandleListAssignments)
	mux.HandleFunc("GET /api/educations", h.HandleListEducations)
	mux.HandleFunc("GET /api/educations/{id}", h.HandleGetEducation)
}
