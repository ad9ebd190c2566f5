package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	v1 "github.com/hvlab/guest-harness/api/v1"
	"github.com/hvlab/guest-harness/internal/services"
	srvErrors "github.com/hvlab/guest-harness/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetRuns returns recorded test runs with filtering and pagination
// (GET /runs)
func (h *Handler) GetRuns(c *gin.Context) {
	page := 1
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		page = v
	}
	pageSize := defaultPageSize
	if v, err := strconv.Atoi(c.DefaultQuery("page_size", "0")); err == nil && v > 0 {
		pageSize = v
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}

	params := services.RunListParams{
		Outcomes: c.QueryArray("outcome"),
		Tests:    c.QueryArray("test"),
		Targets:  c.QueryArray("target"),
		Limit:    uint64(pageSize),
		Offset:   uint64((page - 1) * pageSize),
	}

	result, err := h.runSrv.List(c.Request.Context(), params)
	if err != nil {
		zap.S().Named("run_handler").Errorw("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	pageCount := (result.Total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	apiRuns := make([]v1.TestRun, 0, len(result.Runs))
	for _, run := range result.Runs {
		apiRuns = append(apiRuns, v1.NewTestRunFromModel(run))
	}

	c.JSON(http.StatusOK, v1.RunListResponse{
		Page:      page,
		PageCount: pageCount,
		Total:     result.Total,
		Runs:      apiRuns,
	})
}

// GetRun returns a single recorded run
// (GET /runs/:id)
func (h *Handler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.runSrv.Get(c.Request.Context(), id)
	if err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		zap.S().Named("run_handler").Errorw("failed to get run", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get run"})
		return
	}

	c.JSON(http.StatusOK, v1.NewTestRunFromModel(*run))
}
