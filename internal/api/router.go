package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-planning-backend/internal/api/handlers"
	"github.com/roksva123/go-planning-backend/internal/api/middleware"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Calendar    *handlers.CalendarHandler
	Preferences *handlers.PreferenceHandler
	Settings    *handlers.SettingsHandler
	Tickets     *handlers.TicketHandler
	Workload    *handlers.WorkloadHandler
}

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
}

func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// AUTH ROUTES
	v1.POST("/auth/login", h.Auth.Login)

	authed := v1.Group("", middleware.JWTAuth(cfg.JWTSecret))

	// CALENDAR ROUTES
	cal := authed.Group("/calendar")
	{
		cal.GET("/tasks", h.Calendar.GetTasks)
		cal.POST("/tasks", h.Calendar.CreateTask)
		cal.PATCH("/tasks/:id", h.Calendar.UpdateTask)
		cal.DELETE("/tasks/:id", h.Calendar.DeleteTask)
		cal.POST("/tasks/filter", h.Calendar.FilterTasks)
		cal.POST("/tasks/check-overlap", h.Calendar.CheckOverlap)
		cal.GET("/unassigned-tasks", h.Calendar.GetUnassignedTasks)

		cal.GET("/users", h.Calendar.GetUsers)
		cal.GET("/clients", h.Calendar.GetClients)
		cal.GET("/projects", h.Calendar.GetProjects)
		cal.GET("/status-options", h.Calendar.GetStatusOptions)

		cal.GET("/preferences", h.Preferences.GetPreferences)
		cal.PATCH("/preferences", h.Preferences.UpdatePreferences)
		cal.GET("/client-colors", h.Preferences.GetClientColors)
		cal.PATCH("/client-colors", h.Preferences.SaveClientColors)
		cal.POST("/client-colors/generate", h.Preferences.GenerateClientColors)

		if h.Workload != nil {
			cal.GET("/workload", h.Workload.GetWorkload)
		}
	}

	// SETTINGS ROUTES
	settings := authed.Group("/settings/notion")
	{
		settings.GET("", h.Settings.GetConfig)
		settings.GET("/status", h.Settings.GetStatus)
		settings.PUT("", h.Settings.SaveConfig)
		settings.POST("/test", h.Settings.TestConnection)
	}

	// TICKET ROUTES
	if h.Tickets != nil {
		tickets := authed.Group("/tickets")
		tickets.POST("", h.Tickets.CreateTicket)
		tickets.GET("", h.Tickets.ListTickets)
		tickets.GET("/my", h.Tickets.ListMyTickets)
		tickets.GET("/stats", h.Tickets.GetStats)
		tickets.GET("/:id", h.Tickets.GetTicket)
		tickets.PATCH("/:id", h.Tickets.UpdateTicket)
		tickets.DELETE("/:id", h.Tickets.DeleteTicket)
	}

	return r
}
