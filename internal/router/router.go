package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/room-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/room-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/room-reservation/internal/model"      // role constants for route guards
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, which
// load balancers and monitoring systems use to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login
	// and the two refresh variants.  Each handler is responsible for
	// generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new access
	// token without rotating.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication so an expired access token
	// never traps a session.  The handler accepts either a Bearer header
	// (revoke all sessions) or a refresh_token body (revoke one).
	g.POST("/logout", a.Logout)

	// Protected group: every handler registered here runs the JWTAuth
	// middleware first, then the role check.  Both roles may reach /v1/me.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))
	auth.GET("/me", a.Me)

	// Also map POST /v1/logout outside the protected group, so clients can
	// call either /v1/auth/logout or /v1/logout with a refresh token.
	e.POST("/v1/logout", a.Logout)
}

// RegisterBooking registers the room browsing and reservation endpoints
// shared by every authenticated user.  Read endpoints additionally run the
// Redis response cache when one is configured; the rate limiter wraps the
// whole group.
func RegisterBooking(e *echo.Echo, rooms *handler.RoomHandler, bookings *handler.BookingHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))
	for _, m := range extra {
		g.Use(m)
	}

	// Room browsing.  The availability view lists a room's active
	// reservations for one day; the available search lists rooms free for
	// a whole interval.
	g.GET("/rooms", rooms.List)
	g.GET("/rooms/available", rooms.Available)
	g.GET("/rooms/:id", rooms.Get)
	g.GET("/rooms/:id/availability/:date", rooms.Availability)

	// Reservations.  Creation always lands in PENDING; cancellation is
	// allowed only before the slot starts.
	g.POST("/bookings", bookings.Create)
	g.GET("/my-bookings", bookings.ListMine)
	g.GET("/bookings/:id", bookings.Get)
	g.PATCH("/bookings/:id/cancel", bookings.Cancel)
}

// RegisterAdmin registers the administrator endpoints: room management,
// the review queue, decisions, reschedules and the dashboard.  The whole
// group requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, rooms *handler.AdminRoomHandler, bookings *handler.AdminBookingHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))
	for _, m := range extra {
		g.Use(m)
	}

	g.POST("/rooms", rooms.Create)
	g.PUT("/rooms/:id", rooms.Update)
	g.DELETE("/rooms/:id", rooms.Delete)

	g.GET("/bookings", bookings.List)
	g.PATCH("/bookings/:id/status", bookings.SetStatus)
	g.PATCH("/bookings/:id/reschedule", bookings.Reschedule)
	g.GET("/dashboard", bookings.Dashboard)
}
