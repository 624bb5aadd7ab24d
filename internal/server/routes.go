package server

import (
	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Analysis routes
	apiRoutes.POST("/analysis/run", routes.RunAnalysisHandler)
	apiRoutes.GET("/analysis/status", routes.GetAnalysisStatusHandler)

	// Linkage routes
	apiRoutes.GET("/linkages", routes.GetLinkagesHandler)
	apiRoutes.GET("/profiles/:id/linkages", routes.GetProfileLinkagesHandler)

	// Network routes
	apiRoutes.GET("/profiles/:id/network", routes.GetNetworkHandler)
}
