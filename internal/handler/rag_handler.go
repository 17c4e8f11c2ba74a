package handler

import (
	"exam-eval/internal/domain"
	"exam-eval/internal/dto"
	"exam-eval/internal/service"
	"exam-eval/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RagHandler handles report Q&A HTTP requests
type RagHandler struct {
	rag       *service.RagService
	validator *validation.Validator
}

// NewRagHandler creates a new RagHandler instance
func NewRagHandler(rag *service.RagService) *RagHandler {
	return &RagHandler{rag: rag, validator: validation.NewValidator()}
}

// AnswerQuestion handles POST /api/rag.
func (h *RagHandler) AnswerQuestion(c *fiber.Ctx) error {
	var req dto.RagRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := h.validator.ValidateRagRequest(req.StudentID, req.PaperID, req.Question); err != nil {
		return err
	}

	answer, err := h.rag.AnswerQuestion(c.Context(), req.StudentID, req.PaperID, req.Question)
	if err != nil {
		return err
	}

	return c.JSON(dto.RagResponse{Answer: answer})
}
