package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/makeasinger/scales/internal/service"
	"github.com/makeasinger/scales/pkg/response"
)

type JobHandler struct {
	service *service.JobService
}

func NewJobHandler(svc *service.JobService) *JobHandler {
	return &JobHandler{service: svc}
}

// Start handles POST /api/scales/:id/pitch-table
func (h *JobHandler) Start(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.ValidationError(c, "Invalid scale ID", nil)
	}

	result, err := h.service.StartPitchTable(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Accepted(c, result)
}

// Status handles GET /api/jobs/:jobId
func (h *JobHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Result handles GET /api/jobs/:jobId/result
func (h *JobHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetResult(c.Context(), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Cancel handles POST /api/jobs/:jobId/cancel
func (h *JobHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.Cancel(c.Context(), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}
