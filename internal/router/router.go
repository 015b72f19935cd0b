package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"assetdesk/internal/auth"
	"assetdesk/internal/config"
	"assetdesk/internal/handler"
	"assetdesk/internal/model"
)

// authTokenHeader is the header the frontend sends the JWT in.
const authTokenHeader = "x-auth-token"

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	equipmentHandler *handler.EquipmentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/users/login", authHandler.Login)
	api.POST("/users/refresh", authHandler.Refresh)
	api.POST("/users/logout", authHandler.Logout)

	// Secured routes (require JWT in the x-auth-token header)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + authTokenHeader,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	anyRole := auth.RequireRoles(model.RoleAdmin, model.RoleEditor, model.RoleViewer)
	editors := auth.RequireRoles(model.RoleAdmin, model.RoleEditor)
	adminOnly := auth.RequireRoles(model.RoleAdmin)

	// Equipment routes
	secured.GET("/equipment", equipmentHandler.List, anyRole)
	secured.POST("/equipment", equipmentHandler.Create, editors)
	secured.GET("/equipment/count/:category", equipmentHandler.CountByCategory, anyRole)
	secured.GET("/equipment/summary", equipmentHandler.Summary, anyRole)
	secured.GET("/equipment/expiring-warranty", equipmentHandler.ExpiringWarranty, anyRole)
	secured.GET("/equipment/grouped-by-email", equipmentHandler.GroupedByEmail, anyRole)
	secured.PUT("/equipment/:id", equipmentHandler.Update, editors)
	secured.DELETE("/equipment/:id", equipmentHandler.Delete, adminOnly)

	// User management routes
	secured.GET("/users", userHandler.List, adminOnly)
	secured.POST("/users/create", userHandler.Create, adminOnly)
	secured.DELETE("/users/:id", userHandler.Delete, adminOnly)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
