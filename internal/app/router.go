package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"plantkeeper.io/plantkeeper/internal/api/handlers"
	"plantkeeper.io/plantkeeper/internal/api/middleware"
)

func newRouter(server *handlers.Server, signingKey []byte) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AddAllowHeaders("Authorization", "X-Request-ID")
	router.Use(cors.New(corsCfg))

	public := router.Group("/api/v1")
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuth(signingKey))
	server.Register(public, protected)

	return router
}
