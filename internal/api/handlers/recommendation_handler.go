package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/expirywise/backend-go/internal/domain"
	"github.com/expirywise/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	service service.RecommendationService
}

func NewRecommendationHandler(service service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

func (h *RecommendationHandler) parseFilter(c *gin.Context) domain.RecommendationFilter {
	filter := domain.RecommendationFilter{
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}

	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = category
	}

	if risk := strings.TrimSpace(c.Query("risk_level")); risk != "" {
		filter.RiskLevel = risk
	}

	if action := strings.TrimSpace(c.Query("action")); action != "" {
		filter.Action = action
	}

	return filter
}

func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	filter := h.parseFilter(c)
	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recommendations", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

func (h *RecommendationHandler) GetActionSummary(c *gin.Context) {
	filter := h.parseFilter(c)
	results, err := h.service.ActionSummary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch action summary", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *RecommendationHandler) GetRiskDistribution(c *gin.Context) {
	results, err := h.service.RiskDistribution(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch risk distribution", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}
