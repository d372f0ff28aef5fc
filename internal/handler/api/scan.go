package api

import (
	"errors"
	"fmt"
	"time"

	"StructScan/internal/domain/models"
	domrepo "StructScan/internal/domain/repository"
	"StructScan/internal/usecase"
	"StructScan/pkg/cache"
	xhttp "StructScan/pkg/http"
	xlogger "StructScan/pkg/logger"
	"StructScan/pkg/util"

	"github.com/labstack/echo/v4"
)

// ScanHandler exposes the scan pipeline over HTTP.
type ScanHandler struct {
	logger  *xlogger.Logger
	scans   *usecase.ScanUseCase
	cache   cache.Service
	ttl     time.Duration
	symbols []string
}

func NewScanHandler(logger *xlogger.Logger, scans *usecase.ScanUseCase, c cache.Service, ttl time.Duration, symbols []string) *ScanHandler {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &ScanHandler{logger: logger, scans: scans, cache: c, ttl: ttl, symbols: symbols}
}

func (h *ScanHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/scan", h.Scan)
	g.GET("/scan/all", h.ScanAll)
}

func (h *ScanHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Scan runs a single-symbol scan. Insufficient bar history is a client-visible
// condition, not a server fault.
func (h *ScanHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.scans.ScanSymbol(c.Request().Context(), req.Symbol, usecase.OverridesFromRequest(req))
	if err != nil {
		if errors.Is(err, domrepo.ErrInsufficientData) {
			return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()))
		}
		h.logger.Error("scan usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// ScanAll runs the whole-market scan. Results for the default parameter set
// are served from cache for the day unless no_cache is set; any parameter
// override bypasses the cache entirely.
func (h *ScanHandler) ScanAll(c echo.Context) error {
	req := &models.ScanAllRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	o := usecase.ScanOverrides{
		TrendLookback:    req.TrendLookback,
		ATRWindow:        req.ATRWindow,
		StructLookback:   req.StructLookback,
		PullbackLookback: req.PullbackLookback,
		MinRR:            req.MinRR,
	}

	cacheable := h.cache != nil && o == (usecase.ScanOverrides{})
	key := fmt.Sprintf("scan:all:%s", util.DayKey(time.Now().UTC()))

	if cacheable && !req.NoCache {
		var cached models.ScanResponse
		if err := h.cache.Get(c.Request().Context(), key, &cached); err == nil {
			return xhttp.SuccessResponse(c, &cached)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("scan cache read failed", xlogger.Error(err))
		}
	}

	resp := h.scans.ScanAll(c.Request().Context(), h.symbols, o)

	if cacheable {
		if err := h.cache.Set(c.Request().Context(), key, resp, h.ttl); err != nil {
			h.logger.Warn("scan cache write failed", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, resp)
}
