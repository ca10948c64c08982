package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/makeasinger/scales/internal/model"
	"github.com/makeasinger/scales/internal/service"
	"github.com/makeasinger/scales/internal/theory"
	"github.com/makeasinger/scales/pkg/response"
)

// TheoryHandler exposes the interval and pitch arithmetic over HTTP
type TheoryHandler struct {
	validator *validator.Validate
}

func NewTheoryHandler(v *validator.Validate) *TheoryHandler {
	return &TheoryHandler{validator: v}
}

// Classify handles POST /api/theory/intervals/classify
func (h *TheoryHandler) Classify(c *fiber.Ctx) error {
	var req model.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, model.ClassifyResponse{
		Quality: theory.ClassifyInterval(*req.Size, *req.Semitones),
	})
}

// CreateInterval handles POST /api/theory/intervals/create
func (h *TheoryHandler) CreateInterval(c *fiber.Ctx) error {
	var req model.CreateIntervalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, theory.CreateInterval(req.SemitoneOffset, req.PitchOffset))
}

// FromName handles POST /api/theory/intervals/from-name
func (h *TheoryHandler) FromName(c *fiber.Ctx) error {
	var req model.NamedIntervalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	interval, err := theory.NewInterval(*req.Size, req.Quality)
	if err != nil {
		if errors.Is(err, theory.ErrInvalidIntervalCombination) {
			return response.InvalidInterval(c, err.Error())
		}
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, interval)
}

// Invert handles POST /api/theory/intervals/invert
func (h *TheoryHandler) Invert(c *fiber.Ctx) error {
	var req model.InvertIntervalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, theory.InvertInterval(req.Interval))
}

// Add handles POST /api/theory/intervals/add
func (h *TheoryHandler) Add(c *fiber.Ctx) error {
	var req model.AddIntervalsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, theory.AddIntervals(req.A, req.B))
}

// Apply handles POST /api/theory/pitches/apply
func (h *TheoryHandler) Apply(c *fiber.Ctx) error {
	var req model.ApplyIntervalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, theory.GetPitch(req.Pitch, req.Interval))
}

// Between handles POST /api/theory/pitches/interval
func (h *TheoryHandler) Between(c *fiber.Ctx) error {
	var req model.IntervalBetweenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, theory.GetIntervalBetween(req.From, req.To))
}

// Transpose handles POST /api/theory/pitches/transpose
func (h *TheoryHandler) Transpose(c *fiber.Ctx) error {
	var req model.TransposeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, theory.TransposePitch(req.Pitch, req.Semitones))
}

// GenerateScale handles POST /api/theory/scales/generate
func (h *TheoryHandler) GenerateScale(c *fiber.Ctx) error {
	var req model.GenerateScaleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	pitches := theory.GenerateScalePitches(req.Root, req.Intervals)
	return response.OK(c, model.GenerateScaleResponse{
		Pitches: pitches,
		Spelled: service.Spell(pitches),
	})
}
