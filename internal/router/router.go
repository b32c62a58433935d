// Package router builds the Echo instance: global middleware, the system
// routes and the /api/v1 groups.
package router

import (
	"net/http"

	"github.com/deppfellow/go-productivity/internal/handler"
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter wires middleware and routes. Middleware order matters: the
// request id and New Relic transaction exist before the request logger is
// built, and the error handler sees the logger of the request.
func NewRouter(s *server.Server, h *handler.Handlers, mw *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
		mw.Global.CORS(),
		mw.Global.Secure(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerProxyRoutes(v1.Group("/request", mw.RateLimit.Limit()), h)

	private := v1.Group("", mw.Auth.RequireAuth)
	registerNoteRoutes(private.Group("/notes"), h)
	registerFlowRoutes(private.Group("/flows"), h)
	registerTaskRoutes(private.Group("/tasks"), h)
	registerNotificationRoutes(private.Group("/notifications"), h)

	return router
}

func registerNoteRoutes(g *echo.Group, h *handler.Handlers) {
	n := h.Note
	g.POST("", handler.Handle(n.Handler, n.Create, http.StatusCreated))
	g.GET("", handler.Handle(n.Handler, n.List, http.StatusOK))
	g.GET("/:id", handler.Handle(n.Handler, n.Get, http.StatusOK))
	g.DELETE("/:id", handler.Handle(n.Handler, n.Delete, http.StatusOK))
}

func registerFlowRoutes(g *echo.Group, h *handler.Handlers) {
	f := h.Flow
	g.GET("", handler.Handle(f.Handler, f.List, http.StatusOK))
	g.GET("/all", handler.Handle(f.Handler, f.All, http.StatusOK))
	g.POST("", handler.Handle(f.Handler, f.Create, http.StatusCreated))
	g.GET("/:id", handler.Handle(f.Handler, f.Get, http.StatusOK))
	g.PUT("/:id", handler.Handle(f.Handler, f.Update, http.StatusOK))
	g.DELETE("/:id", handler.Handle(f.Handler, f.Delete, http.StatusOK))
}

func registerTaskRoutes(g *echo.Group, h *handler.Handlers) {
	t := h.Task
	g.POST("", handler.Handle(t.Handler, t.Create, http.StatusCreated))
	g.PUT("/:id", handler.Handle(t.Handler, t.Update, http.StatusOK))
	g.DELETE("/:id", handler.Handle(t.Handler, t.Delete, http.StatusOK))
}

func registerNotificationRoutes(g *echo.Group, h *handler.Handlers) {
	n := h.Notification
	g.GET("", handler.Handle(n.Handler, n.List, http.StatusOK))
	g.GET("/unread-count", handler.Handle(n.Handler, n.UnreadCount, http.StatusOK))
	g.PATCH("/read-all", handler.Handle(n.Handler, n.MarkAllRead, http.StatusOK))
	g.PATCH("/:id/read", handler.Handle(n.Handler, n.MarkRead, http.StatusOK))
}

// registerProxyRoutes mounts the public, rate limited upstream proxies.
func registerProxyRoutes(g *echo.Group, h *handler.Handlers) {
	p := h.Proxy
	g.GET("/random", handler.Handle(p.Handler, p.Random, http.StatusOK))
	g.GET("/weather", handler.Handle(p.Handler, p.Weather, http.StatusOK))
	g.GET("/cityInfo", handler.Handle(p.Handler, p.CityInfo, http.StatusOK))
	g.GET("/picture", handler.Handle(p.Handler, p.Picture, http.StatusOK))
}
