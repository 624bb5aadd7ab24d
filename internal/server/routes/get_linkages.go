package routes

import (
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetLinkagesHandler returns every active linkage in the graph.
func GetLinkagesHandler(c echo.Context) error {
	type getLinkagesResponse struct {
		Message  string           `json:"message"`
		Linkages []common.Linkage `json:"linkages"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	linkages, err := c.(*middleware.AppContext).App.Linkages.ListActive(ctx)
	if err != nil {
		logger.Error("Failed to list linkages", "err", err)
		return c.JSON(http.StatusInternalServerError, getLinkagesResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getLinkagesResponse{
		Message:  "OK",
		Linkages: linkages,
	})
}

// GetProfileLinkagesHandler returns the active linkages touching one
// profile, strongest suspicion first.
func GetProfileLinkagesHandler(c echo.Context) error {
	type getProfileLinkagesParams struct {
		ProfileID   string `param:"id" validate:"required"`
		MinStrength int    `query:"min_strength" validate:"omitempty,min=0,max=100"`
	}

	type getProfileLinkagesResponse struct {
		Message  string           `json:"message"`
		Linkages []common.Linkage `json:"linkages"`
	}

	params := new(getProfileLinkagesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getProfileLinkagesResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getProfileLinkagesResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	store := c.(*middleware.AppContext).App.Linkages

	var linkages []common.Linkage
	var err error
	if params.MinStrength > 0 {
		linkages, err = store.FindStrongByProfile(ctx, params.ProfileID, params.MinStrength)
	} else {
		linkages, err = store.FindByProfile(ctx, params.ProfileID)
	}
	if err != nil {
		logger.Error("Failed to load linkages", "profile", params.ProfileID, "err", err)
		return c.JSON(http.StatusInternalServerError, getProfileLinkagesResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getProfileLinkagesResponse{
		Message:  "OK",
		Linkages: linkages,
	})
}
