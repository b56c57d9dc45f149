package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/service"
)

type PreferenceHandler struct {
	Svc      *service.PreferenceService
	Calendar *service.CalendarService
}

func NewPreferenceHandler(svc *service.PreferenceService, calendar *service.CalendarService) *PreferenceHandler {
	return &PreferenceHandler{Svc: svc, Calendar: calendar}
}

func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.Svc.Get(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, prefs, "")
}

func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	var req model.PreferencesUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	prefs, err := h.Svc.Update(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, prefs, "Preferences saved")
}

func (h *PreferenceHandler) GetClientColors(c *gin.Context) {
	colors, err := h.Svc.ClientColors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, colors, "")
}

type clientColorsRequest struct {
	Colors []model.ClientColor `json:"colors"`
}

func (h *PreferenceHandler) SaveClientColors(c *gin.Context) {
	var req clientColorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	colors, err := h.Svc.SaveClientColors(c.Request.Context(), req.Colors, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, colors, "Client colors saved")
}

type generateColorsRequest struct {
	Clients []model.Client `json:"clients"`
}

// GenerateClientColors colors the clients listed in the body, or every
// client of the catalog when the body names none.
func (h *PreferenceHandler) GenerateClientColors(c *gin.Context) {
	var req generateColorsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	clients := req.Clients
	if len(clients) == 0 {
		var err error
		if clients, err = h.Calendar.ListClients(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	}

	created, err := h.Svc.GenerateClientColors(c.Request.Context(), clients, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, created, "Client colors generated")
}
