package api

import (
	"fmt"
	"net/http"

	"FinCast/internal/domain/catalog"
	"FinCast/internal/domain/models"
	"FinCast/internal/service/ratelimit"
	"FinCast/internal/usecase"
	xhttp "FinCast/pkg/http"
	xlogger "FinCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	msgMethodNotAllowed = "Only POST method is allowed"
	msgRateLimited      = "Rate limit exceeded. Please try again later."
)

// ForecastEchoHandler serves the forecast and catalog endpoints.
type ForecastEchoHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.ForecastPipeline
	limiter  ratelimit.Limiter
}

func NewForecastEchoHandler(logger *xlogger.Logger, pipeline *usecase.ForecastPipeline, limiter ratelimit.Limiter) *ForecastEchoHandler {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, pipeline: pipeline, limiter: limiter}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.Any("/forecast", h.Forecast)
	g.GET("/assets", h.Assets)
}

// Forecast handles every method on /api/forecast so non-POST gets the JSON 405.
func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		c.Response().Header().Set(echo.HeaderAllow, http.MethodPost)
		return xhttp.ErrorResponse(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}

	ctx := c.Request().Context()
	allowed, err := h.limiter.Allow(ctx, c.RealIP())
	if err != nil {
		// fail open
		h.logger.Warn("rate limiter error", xlogger.Error(err))
	} else if !allowed {
		return xhttp.ErrorResponse(c, http.StatusTooManyRequests, msgRateLimited)
	}

	req := &models.ForecastRequest{}
	if err := xhttp.ReadRequest(c, req); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	res, err := h.pipeline.Forecast(ctx, req)
	if err != nil {
		if status := xhttp.StatusOf(err); status >= http.StatusInternalServerError {
			h.logger.Error("forecast usecase error",
				xlogger.String("asset_type", req.AssetType),
				xlogger.String("asset_name", req.AssetName),
				xlogger.Int("status", status),
				xlogger.Error(err),
			)
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, forecastBody(res))
}

// forecastBody renders the response; the prediction key embeds the horizon.
func forecastBody(res *models.ForecastResult) map[string]interface{} {
	body := map[string]interface{}{
		"asset":          res.AssetName,
		"current_price":  res.CurrentPrice,
		"interest_rate":  res.InterestRate,
		"inflation_rate": res.InflationRate,
		"forecast_years": res.Years,
		"growth_applied": res.GrowthApplied,
	}
	body[fmt.Sprintf("predicted_price_%d_years", res.Years)] = res.Predicted
	return body
}

type assetsResponse struct {
	Types  []string        `json:"asset_types"`
	Assets []catalog.Asset `json:"assets"`
}

// Assets lists the catalog with growth factors.
func (h *ForecastEchoHandler) Assets(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, assetsResponse{Types: catalog.Types(), Assets: catalog.List()})
}

var _ xhttp.Handler = (*ForecastEchoHandler)(nil)
