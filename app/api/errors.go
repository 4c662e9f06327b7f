package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"rag/app/agent"
	"rag/model"
)

// ErrorHandler maps pipeline and validation failures to structured JSON.
// A request that cannot complete names the failing dependency instead of
// leaking a stack trace.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}

	var step string
	var stepErr *agent.StepError
	if errors.As(err, &stepErr) {
		step = stepErr.Step
	}

	var mnf *model.ModelNotFoundError
	if errors.As(err, &mnf) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(DependencyError{
			Message:    "model not available",
			Dependency: mnf.Model,
			Step:       step,
			Detail:     mnf.Error(),
		})
	}
	if errors.Is(err, model.ErrBackendUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(DependencyError{
			Message:    "model backend unavailable",
			Dependency: "ollama",
			Step:       step,
			Detail:     err.Error(),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(NewError(fiberErr.Code, fiberErr.Message))
	}

	slog.Default().Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(NewError(fiber.StatusInternalServerError, err.Error()))
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

// DependencyError tells the caller which external collaborator is down.
type DependencyError struct {
	Message    string `json:"error"`
	Dependency string `json:"dependency"`
	Step       string `json:"step,omitempty"`
	Detail     string `json:"detail,omitempty"`
}
