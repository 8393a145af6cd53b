// Package httpapi exposes the SDK over HTTP for host applications that embed
// the bridge as a sidecar process rather than linking it.
package httpapi

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/sdk"
	"github.com/wayfarerhq/mapbridge/types"
)

// Handler holds the SDK the HTTP surface drives.
type Handler struct {
	sdk *sdk.SDK
	log *zap.SugaredLogger
}

// NewHandler creates the HTTP handler set.
func NewHandler(s *sdk.SDK) *Handler {
	return &Handler{sdk: s, log: logger.GetLogger().Named("httpapi")}
}

// Register mounts the API under /v1.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")

	v1.GET("/viewer/url", h.ViewerURL)

	positioning := v1.Group("/positioning")
	{
		positioning.POST("/start", h.StartPositioning)
		positioning.POST("/stop", h.StopPositioning)
	}

	v1.POST("/directions", h.CalculateRoute)

	navigation := v1.Group("/navigation")
	{
		navigation.POST("/start", h.StartNavigation)
		navigation.POST("/stop", h.StopNavigation)
	}

	cartography := v1.Group("/cartography")
	{
		cartography.GET("/buildings", h.ListBuildings)
		cartography.POST("/invalidate", h.InvalidateCache)
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.InternalServerError(err.Error())
	}

	status := http.StatusInternalServerError
	switch appErr.Type {
	case errors.ValidationError:
		status = http.StatusBadRequest
	case errors.NotFoundError:
		status = http.StatusNotFound
	case errors.OperationFailedError:
		status = http.StatusUnprocessableEntity
	case errors.BridgeError, errors.ViewerTransportError:
		status = http.StatusBadGateway
	}

	h.log.Warnw("Request failed", "path", c.FullPath(), "type", string(appErr.Type), "error", err)
	c.JSON(status, gin.H{"error": gin.H{
		"type":    appErr.Type,
		"message": appErr.Message,
		"detail":  appErr.Detail,
	}})
}

// ViewerURL returns the URL the embedded viewer should load.
func (h *Handler) ViewerURL(c *gin.Context) {
	url, err := h.sdk.ViewerURL()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// StartPositioning begins location updates.
func (h *Handler) StartPositioning(c *gin.Context) {
	var req types.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.ValidationFailed("invalid location request", err.Error()))
		return
	}
	if err := h.sdk.StartPositioning(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// StopPositioning ends location updates.
func (h *Handler) StopPositioning(c *gin.Context) {
	if err := h.sdk.StopPositioning(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// CalculateRoute computes a route.
func (h *Handler) CalculateRoute(c *gin.Context) {
	var req types.DirectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.ValidationFailed("invalid directions request", err.Error()))
		return
	}
	route, err := h.sdk.CalculateRoute(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

type startNavigationBody struct {
	Directions types.DirectionsRequest `json:"directions"`
	Navigation types.NavigationRequest `json:"navigation"`
}

// StartNavigation computes a route and begins guidance.
func (h *Handler) StartNavigation(c *gin.Context) {
	var body startNavigationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, errors.ValidationFailed("invalid navigation request", err.Error()))
		return
	}
	route, err := h.sdk.StartNavigation(c.Request.Context(), body.Directions, body.Navigation)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// StopNavigation ends guidance; succeeds when nothing is running.
func (h *Handler) StopNavigation(c *gin.Context) {
	if err := h.sdk.StopNavigation(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// ListBuildings returns the account's buildings.
func (h *Handler) ListBuildings(c *gin.Context) {
	buildings, err := h.sdk.FetchBuildings(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildings)
}

// InvalidateCache drops cached cartography.
func (h *Handler) InvalidateCache(c *gin.Context) {
	if err := h.sdk.InvalidateCache(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}
