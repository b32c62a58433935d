package handler

import (
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/proxy"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/service"
	"github.com/labstack/echo/v4"
)

// ProxyHandler serves the public /request routes.
type ProxyHandler struct {
	Handler
	proxy *service.ProxyService
}

func NewProxyHandler(s *server.Server, p *service.ProxyService) *ProxyHandler {
	return &ProxyHandler{
		Handler: NewHandler(s),
		proxy:   p,
	}
}

func (h *ProxyHandler) Random(c echo.Context, _ *model.Empty) (*proxy.Quote, error) {
	return h.proxy.RandomQuote(c.Request().Context())
}

func (h *ProxyHandler) Weather(c echo.Context, query *proxy.LocationQuery) (*proxy.Weather, error) {
	return h.proxy.Weather(c.Request().Context(), query.Location)
}

func (h *ProxyHandler) CityInfo(c echo.Context, query *proxy.LocationQuery) (*proxy.CityInfo, error) {
	return h.proxy.CityInfo(c.Request().Context(), query.Location)
}

func (h *ProxyHandler) Picture(c echo.Context, _ *model.Empty) (*proxy.Picture, error) {
	return h.proxy.Picture(c.Request().Context())
}
