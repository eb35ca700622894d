package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/credits"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/middleware"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/service"
)

type WorkloadHandler struct {
	service *service.SessionService
}

func NewWorkloadHandler(service *service.SessionService) *WorkloadHandler {
	return &WorkloadHandler{service: service}
}

// Handles GET /api/v1/sizes
func (h *WorkloadHandler) Sizes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sizes":           credits.RateTable(),
		"weeks_per_month": credits.WeeksPerMonth,
	})
}

// Handles GET /api/v1/workloads
func (h *WorkloadHandler) List(c *gin.Context) {
	view, err := h.service.Load(c.Request.Context(), sessionID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Handles POST /api/v1/workloads. The body is optional; fields it leaves
// out take the standard new workload values.
func (h *WorkloadHandler) Append(c *gin.Context) {
	var defaults *credits.WorkloadPatch

	var req credits.WorkloadPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		defaults = &req
	}

	view, err := h.service.Append(c.Request.Context(), sessionID(c), defaults)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// Handles PATCH /api/v1/workloads/:index
func (h *WorkloadHandler) Update(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}

	var req struct {
		Field string `json:"field" binding:"required"`
		Value any    `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, err := credits.ParseField(req.Field)
	if err != nil {
		abortWithError(c, err)
		return
	}

	view, err := h.service.Update(c.Request.Context(), sessionID(c), index, field, req.Value)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Handles PUT /api/v1/workloads/:index. Every field present in the body is
// applied; if one is rejected the workload is left unchanged.
func (h *WorkloadHandler) Replace(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edit := make(credits.Edit, len(req))
	for name, value := range req {
		edit[credits.Field(name)] = value
	}

	view, err := h.service.Apply(c.Request.Context(), sessionID(c), index, edit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Handles DELETE /api/v1/workloads/:index
func (h *WorkloadHandler) Remove(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}

	view, err := h.service.RemoveAt(c.Request.Context(), sessionID(c), index)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Handles DELETE /api/v1/session
func (h *WorkloadHandler) EndSession(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), sessionID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Handles GET /api/v1/estimate
func (h *WorkloadHandler) Current(c *gin.Context) {
	id := sessionID(c)
	est, summary, err := h.service.Evaluate(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"estimate":   est,
		"summary":    summary,
	})
}

// Handles POST /api/v1/estimate. The posted list is evaluated as is and
// never stored.
func (h *WorkloadHandler) Estimate(c *gin.Context) {
	var req struct {
		Workloads []credits.Workload `json:"workloads"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Workloads == nil {
		req.Workloads = []credits.Workload{}
	}

	est, summary, err := h.service.EvaluateWorkloads(req.Workloads)
	if err != nil {
		if errors.Is(err, credits.ErrInvalidSize) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workloads": req.Workloads,
		"estimate":  est,
		"summary":   summary,
	})
}

func sessionID(c *gin.Context) uuid.UUID {
	id, _ := middleware.SessionID(c)
	return id
}

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return 0, false
	}
	return index, true
}
