package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-planning-backend/internal/service"
)

type WorkloadHandler struct {
	Svc *service.WorkloadService
}

func NewWorkloadHandler(svc *service.WorkloadService) *WorkloadHandler {
	return &WorkloadHandler{Svc: svc}
}

// GetWorkload serves GET /calendar/workload?start=&end=.
func (h *WorkloadHandler) GetWorkload(c *gin.Context) {
	resp, err := h.Svc.GetWorkload(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp, "")
}
