package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andresuchdata/mpstock/internal/domain"
	"github.com/andresuchdata/mpstock/internal/service"
	"github.com/andresuchdata/mpstock/internal/snapshot"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type MonitoringHandler struct {
	service *service.MonitoringService
}

func NewMonitoringHandler(service *service.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{service: service}
}

// parseSelection reads the selection from the query string. Unknown values
// fall back to the defaults. A valid toggle column is applied on top of the
// current sort, the way a header click would.
func (h *MonitoringHandler) parseSelection(c *gin.Context) domain.Selection {
	sel := domain.Selection{
		Marketplace: domain.Marketplace(c.Query("marketplace")),
		Period:      domain.Window(c.Query("period")),
		Status:      domain.StatusFilter(c.Query("status")),
		Sort: domain.SortSpec{
			Column:    domain.SortColumn(c.Query("sort_field")),
			Ascending: !strings.EqualFold(strings.TrimSpace(c.Query("sort_direction")), "desc"),
		},
	}.Normalize()

	if column, ok := domain.ParseSortColumn(c.Query("toggle")); ok {
		sel.Sort = sel.Sort.Toggle(column)
	}
	return sel
}

func (h *MonitoringHandler) view(c *gin.Context) (*domain.View, bool) {
	view, err := h.service.View(c.Request.Context(), h.parseSelection(c))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return view, true
}

func (h *MonitoringHandler) GetView(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *MonitoringHandler) GetRecords(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":   view.Version,
		"selection": view.Selection,
		"records":   view.Records,
		"totals":    view.Totals,
		"count":     len(view.Records),
	})
}

func (h *MonitoringHandler) GetClusters(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":   view.Version,
		"selection": view.Selection,
		"clusters":  view.Clusters,
	})
}

func (h *MonitoringHandler) GetAlerts(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":    view.Version,
		"selection":  view.Selection,
		"alerts":     view.Alerts,
		"has_alerts": view.HasAlerts,
	})
}

func (h *MonitoringHandler) ResolveCluster(c *gin.Context) {
	warehouse := strings.TrimSpace(c.Query("warehouse"))
	if warehouse == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "warehouse is required"})
		return
	}

	mp, ok := domain.ParseMarketplace(c.Query("marketplace"))
	if !ok {
		mp = domain.DefaultSelection().Marketplace
	}

	c.JSON(http.StatusOK, gin.H{
		"warehouse":   warehouse,
		"marketplace": mp,
		"cluster":     h.service.ResolveCluster(warehouse, mp),
	})
}

func (h *MonitoringHandler) Refresh(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.service.Status())
}

func (h *MonitoringHandler) Health(c *gin.Context) {
	st := h.service.Status()
	code := http.StatusOK
	if !st.Ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, st)
}

func (h *MonitoringHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRefreshInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, snapshot.ErrNoSnapshot):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("monitoring request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
