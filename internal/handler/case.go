package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/case-runner/internal/apperror"
	"github.com/sakif/case-runner/internal/auth"
	"github.com/sakif/case-runner/internal/dispatch"
	"github.com/sakif/case-runner/internal/service"
)

// CaseHandler serves the case CRUD routes and the dispatch route.
//
// Route-level auth is uneven by design: create and list are scoped to the
// authenticated caller, while the by-id routes (get, patch, delete, test)
// take any id without an owner check. See DESIGN.md before "fixing" this.
type CaseHandler struct {
	caseService *service.CaseService
	dispatcher  *dispatch.Dispatcher
	logger      *slog.Logger
}

// NewCaseHandler creates a CaseHandler.
func NewCaseHandler(caseService *service.CaseService, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// HandleCreate stores a new case owned by the caller.
//
// HTTP: POST /api/cases/ (auth required)
// 201 with the stored record; 409 on a duplicate title.
func (h *CaseHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("You are not logged in"))
		return
	}

	var in service.CreateCaseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("invalid JSON body"))
		return
	}

	c, err := h.caseService.Create(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "case", c)
}

// HandleList returns one page of the caller's cases.
//
// HTTP: GET /api/cases?page=&limit= (auth required)
// Response: {"status":"success","results":N,"cases":[...]}
// Unparsable page/limit values fall back to the defaults (1 and 10).
func (h *CaseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("You are not logged in"))
		return
	}

	page := queryInt(r, "page", service.DefaultPage)
	limit := queryInt(r, "limit", service.DefaultLimit)

	cases, err := h.caseService.List(r.Context(), user.ID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(cases),
		"cases":   cases,
	})
}

// HandleGet fetches a case by id. Not owner-scoped.
//
// HTTP: GET /api/cases/{id}
func (h *CaseHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.caseService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, "case", c)
}

// HandleUpdate applies a partial update by id. Fields absent from the body
// keep their stored values.
//
// HTTP: PATCH /api/cases/{id}
func (h *CaseHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateCaseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("invalid JSON body"))
		return
	}

	c, err := h.caseService.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, "case", c)
}

// HandleDelete removes a case by id.
//
// HTTP: DELETE /api/cases/{id}
// 204 with no body on success; 404 for an unknown (or already deleted) id.
func (h *CaseHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.caseService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDispatch executes the case's outbound request and returns the
// record with the freshly captured response fields.
//
// HTTP: GET /api/cases/{id}/test
func (h *CaseHandler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	c, err := h.dispatcher.Dispatch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, "case", c)
}

// queryInt reads an integer query parameter, falling back on absence or
// garbage.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
