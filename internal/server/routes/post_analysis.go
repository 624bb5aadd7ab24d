package routes

import (
	"net/http"
	"time"

	"github.com/argus-intel/argus/backend/internal/queue"
	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/internal/util"
	"github.com/argus-intel/argus/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// RunAnalysisHandler enqueues an immediate full-population analysis. The
// worker picks the trigger up and runs the scan under the population lease.
func RunAnalysisHandler(c echo.Context) error {
	type runAnalysisBody struct {
		ProfileID string `json:"profile_id"`
	}

	type runAnalysisResponse struct {
		Message     string    `json:"message"`
		RequestedAt time.Time `json:"requested_at"`
	}

	data := new(runAnalysisBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, runAnalysisResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	trigger := queue.AnalysisTrigger{
		ProfileID:   data.ProfileID,
		RequestedAt: time.Now().UTC(),
	}

	ch := c.(*middleware.AppContext).App.Queue
	err := util.RetryErr(3, func() error {
		return queue.PublishTrigger(ch, trigger)
	})
	if err != nil {
		logger.Error("Failed to publish analysis trigger", "err", err)
		return c.JSON(http.StatusInternalServerError, runAnalysisResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, runAnalysisResponse{
		Message:     "Analysis queued",
		RequestedAt: trigger.RequestedAt,
	})
}
