package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-gms/config"
	"campus-gms/middleware"
	"campus-gms/models"
	"campus-gms/services"
	"campus-gms/websocket"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	JWT           *services.JWTService
	Auth          *services.AuthService
	Categories    *services.CategoryService
	Issues        *services.IssueService
	LostFound     *services.LostFoundService
	Notifications *services.NotificationService
	Media         *services.MediaService
	Hub           *websocket.Hub
	RateLimiter   *middleware.RateLimiter
}

type handler struct {
	Deps
	upgrader *gorillaws.Upgrader
}

// Setup builds the gin engine with every API route.
func Setup(d Deps) *gin.Engine {
	if d.RateLimiter == nil {
		d.RateLimiter = middleware.NewRateLimiter(d.Config.Server.RequestsPerMinute)
	}
	h := &handler{Deps: d, upgrader: websocket.NewUpgrader(d.Config.Server.AllowedOrigins)}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.AuditLogMiddleware(d.Logger))
	router.Use(middleware.CORSMiddleware(d.Config.Server.AllowedOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.InputValidationMiddleware())
	router.Use(middleware.RateLimitMiddleware(d.RateLimiter, d.Logger))
	router.MaxMultipartMemory = 8 << 20

	router.GET("/health", h.health)

	auth := middleware.AuthMiddleware(d.JWT, d.Auth, d.Logger)
	staff := middleware.RequireRole(models.RoleResponder, models.RoleAdmin)

	apiV1 := router.Group("/api/v1")
	{
		h.registerAuthRoutes(apiV1.Group("/auth"), auth)
		apiV1.GET("/categories", h.listCategories)

		issues := apiV1.Group("/issues", auth)
		{
			issues.POST("", h.createIssue)
			issues.GET("", staff, h.listIssues)
			issues.GET("/similar", h.similarIssues)
			issues.GET("/mine", h.myIssues)
			issues.GET("/:id", h.getIssue)
			issues.GET("/:id/history", h.issueHistory)
			issues.PATCH("/:id/status", h.updateIssueStatus)
		}

		lostFound := apiV1.Group("/lost-found", auth)
		{
			lostFound.GET("", h.listLostFound)
			lostFound.POST("", h.createLostFound)
			lostFound.GET("/:id", h.getLostFound)
			lostFound.POST("/:id/claim", h.claimLostFound)
			lostFound.DELETE("/:id", h.deleteLostFound)
		}

		apiV1.POST("/attachments", auth, h.uploadAttachment)

		notifications := apiV1.Group("/notifications", auth)
		{
			notifications.GET("", h.listNotifications)
			notifications.GET("/unread-count", h.unreadCount)
			notifications.PATCH("/:id/read", h.markNotificationRead)
			notifications.PATCH("/read-all", h.markAllNotificationsRead)
		}

		admin := apiV1.Group("/admin", auth, middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/categories", h.adminCategories)
			admin.PATCH("/categories/:key", h.toggleCategory)
			admin.GET("/users", h.adminUsers)
			admin.PATCH("/users/:student_id", h.updateUser)
		}

		apiV1.GET("/ws/issues", middleware.WebSocketAuthMiddleware(d.JWT, d.Auth, d.Logger), h.issueSocket)
	}

	return router
}

func (h *handler) health(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"
	if h.DB != nil {
		if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unreachable"
		}
	}
	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"database": dbStatus,
		"time":     time.Now().UTC(),
	})
}

func (h *handler) issueSocket(c *gin.Context) {
	websocket.ServeWebSocket(h.Hub, h.upgrader, c.Writer, c.Request, middleware.CurrentUser(c))
}
