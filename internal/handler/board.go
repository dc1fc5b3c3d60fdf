package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/KrakenByte/mission-accomplishable/internal/model"
	"github.com/KrakenByte/mission-accomplishable/internal/service"
	"github.com/KrakenByte/mission-accomplishable/pkg/respond"
)

type BoardHandler struct {
	service *service.BoardService
	logger  *zap.Logger
}

func NewBoardHandler(srv *service.BoardService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		service: srv,
		logger:  logger,
	}
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type priorityRequest struct {
	Priority int `json:"priority"`
}

// dueDateRequest takes either date text or epoch milliseconds.
type dueDateRequest struct {
	DueDate json.RawMessage `json:"dueDate"`
}

func (h *BoardHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return false
	}
	return true
}

func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.Board())
}

func (h *BoardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *BoardHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !h.decode(w, r, &req) {
		return
	}
	project, err := h.service.CreateProject(r.Context(), req.Name, req.Description)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/projects/"+project.ID)
	respond.JSON(w, r, http.StatusCreated, project)
}

func (h *BoardHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.GetProject(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, project)
}

func (h *BoardHandler) ActiveProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.ActiveProject()
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, project)
}

func (h *BoardHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !h.decode(w, r, &req) {
		return
	}
	project, err := h.service.UpdateProject(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, project)
}

func (h *BoardHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *BoardHandler) ActivateProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.ActivateProject(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, project)
}

// SortTasks handles ?by=priority|status&desc=true.
func (h *BoardHandler) SortTasks(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	desc, _ := strconv.ParseBool(r.URL.Query().Get("desc"))

	project, err := h.service.SortTasks(r.Context(), chi.URLParam(r, "id"), by, desc)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, project)
}

func (h *BoardHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req service.NewTaskInput
	if !h.decode(w, r, &req) {
		return
	}
	projectID := chi.URLParam(r, "id")
	task, err := h.service.AddTask(r.Context(), projectID, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/projects/%s/tasks/%s", projectID, task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *BoardHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTask(chi.URLParam(r, "id"), chi.URLParam(r, "taskID"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// taskUpdateResponse is the task after a PATCH, with the reason for any
// rejected field.
type taskUpdateResponse struct {
	model.TaskRecord
	Warning string `json:"warning,omitempty"`
}

// UpdateTask applies a partial update. Rejected fields do not fail the
// request: the accepted ones are already saved, so the task is returned with
// a warning naming what was rejected.
func (h *BoardHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req model.TaskUpdate
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.service.UpdateTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"), req)
	resp := taskUpdateResponse{TaskRecord: task}
	if errors.Is(err, service.ErrValidation) {
		resp.Warning = err.Error()
		err = nil
	}
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *BoardHandler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveTask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w)
}

// ChangeStatus sets the status from {"status": ...}. An empty body moves the
// task to the next status in the cycle.
func (h *BoardHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	projectID, taskID := chi.URLParam(r, "id"), chi.URLParam(r, "taskID")

	var (
		task model.TaskRecord
		err  error
	)
	if r.ContentLength == 0 {
		task, err = h.service.CycleStatus(r.Context(), projectID, taskID)
	} else {
		var req statusRequest
		if !h.decode(w, r, &req) {
			return
		}
		task, err = h.service.ChangeStatus(r.Context(), projectID, taskID, req.Status)
	}
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *BoardHandler) ChangePriority(w http.ResponseWriter, r *http.Request) {
	var req priorityRequest
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.service.ChangePriority(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"), req.Priority)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// ChangeDueDate sets the due date from {"dueDate": text or epoch millis}.
// Any other value leaves the task as it was.
func (h *BoardHandler) ChangeDueDate(w http.ResponseWriter, r *http.Request) {
	var req dueDateRequest
	if !h.decode(w, r, &req) {
		return
	}
	projectID, taskID := chi.URLParam(r, "id"), chi.URLParam(r, "taskID")

	var (
		task   model.TaskRecord
		err    error
		text   string
		millis float64
	)
	switch {
	case json.Unmarshal(req.DueDate, &text) == nil:
		task, err = h.service.ChangeDueDate(r.Context(), projectID, taskID, text)
	case json.Unmarshal(req.DueDate, &millis) == nil:
		task, err = h.service.ChangeDueDateAt(r.Context(), projectID, taskID, time.UnixMilli(int64(millis)))
	default:
		h.logger.Debug("due date ignored", zap.ByteString("value", req.DueDate))
		task, err = h.service.GetTask(projectID, taskID)
	}
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *BoardHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrProjectNotFound), errors.Is(err, model.ErrTaskNotFound):
		respond.Error(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoActiveProject):
		respond.Error(w, r, http.StatusNotFound, "no active project")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
