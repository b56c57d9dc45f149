package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-planning-backend/internal/api/middleware"
	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/service"
)

type TicketHandler struct {
	Svc *service.TicketService
}

func NewTicketHandler(svc *service.TicketService) *TicketHandler {
	return &TicketHandler{Svc: svc}
}

type ticketRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Screenshots []string `json:"screenshots"`
	UserEmail   string   `json:"userEmail"`
	UserName    string   `json:"userName"`
	CurrentURL  string   `json:"currentUrl"`
	Priority    string   `json:"priority"`
}

// CreateTicket files a ticket for the authenticated user.
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req ticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	name := req.UserName
	if name == "" {
		name = c.GetString(middleware.UsernameKey)
	}
	ticket, err := h.Svc.Create(c.Request.Context(), model.Ticket{
		Title:       req.Title,
		Description: req.Description,
		Screenshots: req.Screenshots,
		UserID:      userID(c),
		UserEmail:   req.UserEmail,
		UserName:    name,
		UserAgent:   c.Request.UserAgent(),
		CurrentURL:  req.CurrentURL,
		Priority:    req.Priority,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, ticket, "Ticket created")
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	var f model.TicketFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	h.list(c, f)
}

func (h *TicketHandler) ListMyTickets(c *gin.Context) {
	h.list(c, model.TicketFilter{UserID: userID(c)})
}

func (h *TicketHandler) list(c *gin.Context, f model.TicketFilter) {
	tickets, err := h.Svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tickets, "")
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, ticket, "")
}

func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	var req model.TicketUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ticket, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, ticket, "Ticket updated")
}

func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Ticket deleted")
}

func (h *TicketHandler) GetStats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "")
}
