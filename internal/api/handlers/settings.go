package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/service"
)

type SettingsHandler struct {
	Svc *service.SettingsService
}

func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{Svc: svc}
}

func (h *SettingsHandler) GetConfig(c *gin.Context) {
	current, err := h.Svc.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, current, "")
}

// GetStatus always answers 200; a missing configuration is reported in the
// body.
func (h *SettingsHandler) GetStatus(c *gin.Context) {
	respond(c, http.StatusOK, h.Svc.Status(c.Request.Context()), "")
}

func (h *SettingsHandler) SaveConfig(c *gin.Context) {
	var req model.StoreConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	saved, err := h.Svc.Save(c.Request.Context(), req, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, saved, "Notion configuration saved")
}

func (h *SettingsHandler) TestConnection(c *gin.Context) {
	var req model.StoreConfig
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	report, err := h.Svc.TestConnection(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, report, report.Message)
}
