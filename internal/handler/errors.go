package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/makeasinger/scales/internal/logger"
	"github.com/makeasinger/scales/internal/service"
	"github.com/makeasinger/scales/pkg/response"
)

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string]string)
		for _, e := range validationErrors {
			fields[e.Field()] = e.Tag()
		}
		return fields
	}
	return nil
}

// serviceError maps service sentinels onto the response envelope
func serviceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return response.ValidationError(c, "Validation failed", map[string]string{ve.Field: ve.Message})
	case errors.Is(err, service.ErrScaleNotFound):
		return response.NotFound(c, "Scale not found")
	case errors.Is(err, service.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, service.ErrJobNotCompleted):
		return response.JobNotReady(c, "Job not completed yet")
	case errors.Is(err, service.ErrJobAlreadyFinished):
		return response.ValidationError(c, "Job already finished", nil)
	}

	logger.Error("Request failed", err, logger.WithContext(c))
	return response.ServiceError(c, err.Error())
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
