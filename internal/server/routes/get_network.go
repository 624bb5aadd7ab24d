package routes

import (
	"errors"
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// GetNetworkHandler explores the linkage network around a profile up to the
// requested depth.
func GetNetworkHandler(c echo.Context) error {
	type getNetworkParams struct {
		ProfileID string `param:"id" validate:"required"`
		Depth     int    `query:"depth" validate:"omitempty,min=1,max=5"`
	}

	type getNetworkResponse struct {
		Message string          `json:"message"`
		Network *common.Network `json:"network,omitempty"`
	}

	params := new(getNetworkParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getNetworkResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getNetworkResponse{
			Message: "Invalid request params",
		})
	}
	if params.Depth == 0 {
		params.Depth = 2
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	explorer := c.(*middleware.AppContext).App.Explorer

	network, err := explorer.Explore(ctx, params.ProfileID, params.Depth)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, getNetworkResponse{
				Message: "Profile not found",
			})
		}
		logger.Error("Failed to explore network", "profile", params.ProfileID, "err", err)
		return c.JSON(http.StatusInternalServerError, getNetworkResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getNetworkResponse{
		Message: "OK",
		Network: network,
	})
}
