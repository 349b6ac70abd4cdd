// Package handlers implements the HTTP surface over the aggregate
// services. Handlers bind input, hand the authenticated actor to the
// service and push failures to the centralized error handler; they hold no
// business logic of their own.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"plantkeeper.io/plantkeeper/internal/api/middleware"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/pkg/worker"
	"plantkeeper.io/plantkeeper/internal/policy"
	"plantkeeper.io/plantkeeper/internal/service"
)

// Server implements all API handlers.
type Server struct {
	jwtCfg        middleware.JWTConfig
	users         *service.UserService
	sites         *service.SiteService
	machines      *service.MachineService
	maintenances  *service.MaintenanceService
	reports       *service.ReportService
	notifications *service.NotificationService
	pools         *worker.Pools
}

// ServerDeps holds all dependencies for creating a Server. Manual DI, no
// wire framework.
type ServerDeps struct {
	JWTCfg        middleware.JWTConfig
	Users         *service.UserService
	Sites         *service.SiteService
	Machines      *service.MachineService
	Maintenances  *service.MaintenanceService
	Reports       *service.ReportService
	Notifications *service.NotificationService
	Pools         *worker.Pools
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		jwtCfg:        deps.JWTCfg,
		users:         deps.Users,
		sites:         deps.Sites,
		machines:      deps.Machines,
		maintenances:  deps.Maintenances,
		reports:       deps.Reports,
		notifications: deps.Notifications,
		pools:         deps.Pools,
	}
}

// Register mounts every route on the group. Auth routes are public; the
// group is expected to carry the JWT middleware for everything else.
func (s *Server) Register(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", s.Login)
	public.GET("/healthz", s.Health)

	protected.GET("/auth/me", s.Me)

	protected.GET("/sites", s.ListSites)
	protected.POST("/sites", s.CreateSite)
	protected.GET("/sites/:id", s.GetSite)
	protected.PUT("/sites/:id", s.UpdateSite)
	protected.DELETE("/sites/:id", s.DeleteSite)
	protected.GET("/sites/:id/machines", s.ListSiteMachines)

	protected.GET("/users", s.ListUsers)
	protected.POST("/users", s.CreateUser)
	protected.GET("/users/:id", s.GetUser)
	protected.PUT("/users/:id", s.UpdateUser)
	protected.DELETE("/users/:id", s.DeactivateUser)

	protected.GET("/machines", s.ListMachines)
	protected.POST("/machines", s.CreateMachine)
	protected.GET("/machines/:id", s.GetMachine)
	protected.PUT("/machines/:id", s.UpdateMachine)
	protected.GET("/machines/:id/maintenances", s.ListMachineMaintenances)

	protected.GET("/maintenances", s.ListMaintenances)
	protected.POST("/maintenances", s.CreateMaintenance)
	protected.GET("/maintenances/:id", s.GetMaintenance)
	protected.PUT("/maintenances/:id", s.UpdateMaintenance)

	protected.GET("/reports", s.ListReports)
	protected.POST("/reports", s.CreateReport)
	protected.GET("/reports/:id", s.GetReport)

	protected.GET("/metrics/workers", s.WorkerMetrics)

	protected.GET("/notifications", s.ListNotifications)
	protected.GET("/notifications/unread-count", s.UnreadNotificationCount)
	protected.PUT("/notifications/:id/read", s.MarkNotificationRead)
}

// actor extracts the authenticated actor from the request context.
func actor(c *gin.Context) policy.Actor {
	return middleware.GetActor(c.Request.Context())
}

// pathID parses the :id path parameter. A malformed id is reported as a
// bad request through the error handler and ok is false.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid id"))
		return 0, false
	}
	return id, true
}
