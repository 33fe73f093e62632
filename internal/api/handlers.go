package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"costablanca/server/internal/catalog"
	"costablanca/server/internal/feedlog"
	"costablanca/server/internal/ingest"
	"costablanca/server/internal/models"
)

type Handler struct {
	catalog  *catalog.Catalog
	pipeline *ingest.Pipeline
	cycles   *feedlog.Log
	logger   *logrus.Logger
}

func NewHandler(cat *catalog.Catalog, pipeline *ingest.Pipeline, cycles *feedlog.Log, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		catalog:  cat,
		pipeline: pipeline,
		cycles:   cycles,
		logger:   logger,
	}
}

// GetNewBuilds returns the current generation of new-build listings.
func (h *Handler) GetNewBuilds(c *gin.Context) {
	properties := h.catalog.NewBuilds(c.Request.Context())
	c.JSON(http.StatusOK, properties)
}

// GetInlandProperties returns listings classified into an inland region.
func (h *Handler) GetInlandProperties(c *gin.Context) {
	properties := h.catalog.InlandProperties(c.Request.Context())
	c.JSON(http.StatusOK, properties)
}

// GetPropertyByReference serves a single listing for detail pages.
func (h *Handler) GetPropertyByReference(c *gin.Context) {
	ref := c.Param("reference")
	property, ok := h.catalog.PropertyByReference(c.Request.Context(), ref)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	c.JSON(http.StatusOK, property)
}

// GetReferences enumerates all references for static path generation.
func (h *Handler) GetReferences(c *gin.Context) {
	refs := h.catalog.References(c.Request.Context())
	if refs == nil {
		refs = []string{}
	}
	c.JSON(http.StatusOK, refs)
}

// GetStats summarizes the current generation for listing pages.
func (h *Handler) GetStats(c *gin.Context) {
	properties := h.catalog.NewBuilds(c.Request.Context())

	byRegion := make(map[string]int)
	unclassified := 0
	var priceFrom *float64
	for _, p := range properties {
		if p.Region == "" {
			unclassified++
		} else {
			byRegion[p.Region]++
		}
		if p.Price != nil && (priceFrom == nil || *p.Price < *priceFrom) {
			priceFrom = p.Price
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_properties":     len(properties),
		"by_region":            byRegion,
		"unclassified":         unclassified,
		"price_from":           priceFrom,
		"price_from_formatted": catalog.FormatPrice(priceFrom),
	})
}

// GetRecentCycles lists recent feed cycles from the cycle log.
func (h *Handler) GetRecentCycles(c *gin.Context) {
	if h.cycles == nil {
		c.JSON(http.StatusOK, []feedlog.FeedCycle{})
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}

	cycles, err := h.cycles.RecentCycles(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get feed cycles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get feed cycles"})
		return
	}
	c.JSON(http.StatusOK, cycles)
}

// GetUnmatchedTowns lists towns recent cycles could not classify, so the
// lookup table can be extended.
func (h *Handler) GetUnmatchedTowns(c *gin.Context) {
	if h.cycles == nil {
		c.JSON(http.StatusOK, []string{})
		return
	}

	towns, err := h.cycles.UnmatchedTowns()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get unmatched towns")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get unmatched towns"})
		return
	}
	if towns == nil {
		towns = []string{}
	}
	c.JSON(http.StatusOK, towns)
}

// ForceRefresh re-fetches both feeds immediately, bypassing the TTL.
func (h *Handler) ForceRefresh(c *gin.Context) {
	reports := h.pipeline.RefreshAll(c.Request.Context())

	summaries := make([]gin.H, 0, len(reports))
	failed := 0
	for _, report := range reports {
		summary := gin.H{
			"partition":       report.Partition,
			"total_records":   report.TotalRecords,
			"stored":          report.Stored,
			"skipped":         report.Skipped,
			"duplicates":      report.Duplicates,
			"unmatched_towns": report.UnmatchedTowns,
		}
		if report.Err != nil {
			summary["error"] = report.Err.Error()
			failed++
		}
		summaries = append(summaries, summary)
	}

	status := http.StatusOK
	if failed == len(reports) {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"cycles": summaries})
}

// GetStatus reports when each partition was last refreshed.
func (h *Handler) GetStatus(c *gin.Context) {
	status := gin.H{}
	for _, partition := range []models.Partition{models.PartitionGeneral, models.PartitionInland} {
		if refreshedAt, ok := h.catalog.LastRefreshed(partition); ok {
			status[string(partition)] = refreshedAt
		} else {
			status[string(partition)] = nil
		}
	}
	c.JSON(http.StatusOK, status)
}
