package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/gridrisk/internal/application/dto"
	"github.com/turtacn/gridrisk/internal/application/service"
	"github.com/turtacn/gridrisk/internal/interfaces/http/middleware"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// ScoringHandler 评分 HTTP 处理器
type ScoringHandler struct {
	scoringService service.ScoringAppService
	logger         logger.Logger
}

// NewScoringHandler 创建评分处理器
func NewScoringHandler(scoringService service.ScoringAppService, log logger.Logger) *ScoringHandler {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &ScoringHandler{
		scoringService: scoringService,
		logger:         log.WithComponent("scoring_handler"),
	}
}

// ScoreFacts 为请求体中的事实评分
// POST /api/v1/scores
func (h *ScoringHandler) ScoreFacts(c *gin.Context) {
	var req dto.ScoreFactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.ErrInvalidRequest("malformed request body").WithCause(err), "score_facts")
		return
	}

	resp, err := h.scoringService.ScoreFacts(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, "score_facts")
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(resp, middleware.TraceID(c)))
}

// ScoreEntities 从数仓加载并评分
// POST /api/v1/entities/score
func (h *ScoringHandler) ScoreEntities(c *gin.Context) {
	var req dto.ScoreEntitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.ErrInvalidRequest("malformed request body").WithCause(err), "score_entities")
		return
	}

	resp, err := h.scoringService.ScoreEntities(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, "score_entities")
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(resp, middleware.TraceID(c)))
}

// GetProfile 获取实体最新画像
// GET /api/v1/entities/:entity_id/profile
func (h *ScoringHandler) GetProfile(c *gin.Context) {
	resp, err := h.scoringService.GetProfile(c.Request.Context(), c.Param("entity_id"))
	if err != nil {
		h.handleError(c, err, "get_profile")
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(resp, middleware.TraceID(c)))
}

// TierSummary 等级分布
// GET /api/v1/reports/tiers
func (h *ScoringHandler) TierSummary(c *gin.Context) {
	resp, err := h.scoringService.TierSummary(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "tier_summary")
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(resp, middleware.TraceID(c)))
}

func (h *ScoringHandler) handleError(c *gin.Context, err error, operation string) {
	status := errors.StatusOf(err)
	fields := logger.Fields{"operation": operation, "status": status}
	if errors.ShouldLogError(err) {
		h.logger.Error(c.Request.Context(), "request failed", err, fields)
	} else {
		h.logger.Debug(c.Request.Context(), "request rejected", logger.Merge(fields, logger.Fields{"error": err.Error()}))
	}
	c.JSON(status, dto.ErrorResponse(err, middleware.TraceID(c)))
}

//Personal.AI order the ending
