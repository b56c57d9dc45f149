package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/service"
)

type CalendarHandler struct {
	Svc *service.CalendarService
}

func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{Svc: svc}
}

// GetTasks serves GET /calendar/tasks?start=&end=&view=.
func (h *CalendarHandler) GetTasks(c *gin.Context) {
	tasks, err := h.Svc.TasksInPeriod(c.Request.Context(), c.Query("start"), c.Query("end"), c.Query("view"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tasks, "")
}

func (h *CalendarHandler) GetUnassignedTasks(c *gin.Context) {
	tasks, err := h.Svc.UnassignedTasks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tasks, "")
}

func (h *CalendarHandler) CreateTask(c *gin.Context) {
	var req model.NewTask
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.Svc.CreateTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, task, "Task created")
}

func (h *CalendarHandler) UpdateTask(c *gin.Context) {
	var req model.TaskUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.Svc.UpdateTask(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task, "Task updated")
}

func (h *CalendarHandler) DeleteTask(c *gin.Context) {
	if err := h.Svc.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Task deleted")
}

type filterRequest struct {
	Tasks   []model.EnrichedTask `json:"tasks"`
	Filters model.TaskFilter     `json:"filters"`
}

// FilterTasks filters tasks the client already holds. It does not touch the
// store.
func (h *CalendarHandler) FilterTasks(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, http.StatusOK, service.Filter(req.Tasks, req.Filters), "")
}

func (h *CalendarHandler) CheckOverlap(c *gin.Context) {
	var req model.OverlapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	report, err := h.Svc.CheckOverlap(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, report, "")
}

func (h *CalendarHandler) GetUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, users, "")
}

func (h *CalendarHandler) GetClients(c *gin.Context) {
	clients, err := h.Svc.ListClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, clients, "")
}

func (h *CalendarHandler) GetProjects(c *gin.Context) {
	projects, err := h.Svc.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, projects, "")
}

func (h *CalendarHandler) GetStatusOptions(c *gin.Context) {
	respond(c, http.StatusOK, h.Svc.StatusOptions(c.Request.Context()), "")
}
