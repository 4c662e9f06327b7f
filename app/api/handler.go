package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rag/app/agent"
	"rag/types"
)

// RequestHandler serves answer requests through the agent pipeline.
type RequestHandler struct {
	agent *agent.Agent
}

func NewRequestHandler(a *agent.Agent) *RequestHandler {
	return &RequestHandler{agent: a}
}

func (h *RequestHandler) HandleAsk(c *fiber.Ctx) error {
	var params types.AskParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	resp, err := h.agent.Ask(c.Context(), params.Question, params.TopK)
	if err != nil {
		return err
	}
	resp.Timestamp = time.Now()
	return c.JSON(resp)
}
