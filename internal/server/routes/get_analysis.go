package routes

import (
	"net/http"
	"time"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetAnalysisStatusHandler reports the state of the linkage graph: how many
// active linkages exist and when the most recent analysis touched one.
func GetAnalysisStatusHandler(c echo.Context) error {
	type analysisStatusResponse struct {
		Message        string     `json:"message"`
		ActiveLinkages int        `json:"active_linkages"`
		LastAnalyzed   *time.Time `json:"last_analyzed,omitempty"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	linkages, err := c.(*middleware.AppContext).App.Linkages.ListActive(ctx)
	if err != nil {
		logger.Error("Failed to list linkages", "err", err)
		return c.JSON(http.StatusInternalServerError, analysisStatusResponse{
			Message: "Internal server error",
		})
	}

	resp := analysisStatusResponse{
		Message:        "OK",
		ActiveLinkages: len(linkages),
	}
	for _, l := range linkages {
		if resp.LastAnalyzed == nil || l.LastAnalyzed.After(*resp.LastAnalyzed) {
			t := l.LastAnalyzed
			resp.LastAnalyzed = &t
		}
	}

	return c.JSON(http.StatusOK, resp)
}
