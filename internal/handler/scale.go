package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/makeasinger/scales/internal/model"
	"github.com/makeasinger/scales/internal/service"
	"github.com/makeasinger/scales/internal/theory"
	"github.com/makeasinger/scales/pkg/response"
)

const defaultRoot = "C"

type ScaleHandler struct {
	service   *service.ScaleService
	validator *validator.Validate
}

func NewScaleHandler(svc *service.ScaleService, v *validator.Validate) *ScaleHandler {
	return &ScaleHandler{
		service:   svc,
		validator: v,
	}
}

// List handles GET /api/scales
func (h *ScaleHandler) List(c *fiber.Ctx) error {
	result, err := h.service.List(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}

// Get handles GET /api/scales/:id
func (h *ScaleHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.ValidationError(c, "Invalid scale ID", nil)
	}

	scale, err := h.service.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, scale)
}

// Create handles POST /api/scales
func (h *ScaleHandler) Create(c *fiber.Ctx) error {
	var req model.ScaleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	scale, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return response.Created(c, scale)
}

// Update handles PUT /api/scales/:id
func (h *ScaleHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.ValidationError(c, "Invalid scale ID", nil)
	}

	var req model.ScaleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	scale, err := h.service.Update(c.Context(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, scale)
}

// Delete handles DELETE /api/scales/:id
func (h *ScaleHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.ValidationError(c, "Invalid scale ID", nil)
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return response.NoContent(c)
}

// Pitches handles GET /api/scales/:id/pitches?root=F#
func (h *ScaleHandler) Pitches(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return response.ValidationError(c, "Invalid scale ID", nil)
	}

	root, err := theory.ParsePitch(c.Query("root", defaultRoot))
	if err != nil {
		return response.ValidationError(c, "Invalid root", map[string]string{"root": err.Error()})
	}

	result, err := h.service.GeneratePitches(c.Context(), id, root)
	if err != nil {
		return serviceError(c, err)
	}
	return response.OK(c, result)
}
