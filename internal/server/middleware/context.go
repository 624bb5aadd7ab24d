package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/argus-intel/argus/backend/pkg/network"
	"github.com/argus-intel/argus/backend/pkg/store"
)

// AppUser is the authenticated caller extracted from the bearer token.
type AppUser struct {
	UserID string
	Role   string
}

// App bundles the shared collaborators route handlers need.
type App struct {
	DBConn       *pgxpool.Pool
	Queue        *amqp091.Channel
	Key          *keyfunc.Keyfunc
	Profiles     store.ProfileStore
	Linkages     store.LinkageStore
	Explorer     *network.Explorer
	MasterAPIKey string
}

// AppContext wraps the echo context with the app collaborators and the
// authenticated user.
type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

// AppContextMiddleware attaches the shared App to every request.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{
				Context: c,
				App:     app,
			})
		}
	}
}
