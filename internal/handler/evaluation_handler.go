package handler

import (
	"io"
	"mime/multipart"

	"exam-eval/internal/domain"
	"exam-eval/internal/dto"
	"exam-eval/internal/logger"
	"exam-eval/internal/service"
	"exam-eval/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EvaluationHandler handles evaluation-related HTTP requests
type EvaluationHandler struct {
	evaluations *service.EvaluationService
	reports     *service.ReportService
	validator   *validation.Validator
}

// NewEvaluationHandler creates a new EvaluationHandler instance
func NewEvaluationHandler(evaluations *service.EvaluationService, reports *service.ReportService) *EvaluationHandler {
	return &EvaluationHandler{
		evaluations: evaluations,
		reports:     reports,
		validator:   validation.NewValidator(),
	}
}

// StartEvaluation handles POST /api/evaluations. It expects a multipart form
// with the "question", "anskey" and "ans_sheet" PDF files, registers a run
// and returns its ID for status polling.
func (h *EvaluationHandler) StartEvaluation(c *fiber.Ctx) error {
	questionPDF, err := readFormFile(c, "question")
	if err != nil {
		return err
	}
	keyPDF, err := readFormFile(c, "anskey")
	if err != nil {
		return err
	}
	sheetPDF, err := readFormFile(c, "ans_sheet")
	if err != nil {
		return err
	}

	runID, err := h.evaluations.StartEvaluation(c.Context(), questionPDF, keyPDF, sheetPDF)
	if err != nil {
		return err
	}

	logger.Get().Info("Accepted evaluation run",
		zap.String("run_id", runID),
		zap.Int("question_bytes", len(questionPDF)),
		zap.Int("key_bytes", len(keyPDF)),
		zap.Int("sheet_bytes", len(sheetPDF)))

	return c.Status(fiber.StatusAccepted).JSON(dto.StartEvaluationResponse{
		RunID:  runID,
		Status: string(domain.RunPending),
	})
}

// GetRunStatus handles GET /api/evaluations/:id.
func (h *EvaluationHandler) GetRunStatus(c *fiber.Ctx) error {
	runID := c.Params("id")
	if err := h.validator.ValidateRunID(runID); err != nil {
		return err
	}

	state, err := h.evaluations.GetRunState(c.Context(), runID)
	if err != nil {
		return err
	}

	return c.JSON(dto.RunStatusResponse{
		RunID:      runID,
		Status:     string(state.Status),
		StudentID:  state.StudentID,
		PaperID:    state.PaperID,
		TotalScore: state.TotalScore,
		Error:      state.Error,
	})
}

// GetReport handles GET /api/reports/:student_id/:paper_id. The body is the
// serialized report array ending with the total-score sentinel.
func (h *EvaluationHandler) GetReport(c *fiber.Ctx) error {
	studentID := c.Params("student_id")
	paperID := c.Params("paper_id")
	if err := h.validator.ValidateReportParams(studentID, paperID); err != nil {
		return err
	}

	reportJSON, err := h.reports.GetReportJSON(c.Context(), studentID, paperID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(reportJSON)
}

func readFormFile(c *fiber.Ctx, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, domain.NewInvalidInputError("missing form file: " + field)
	}
	return readMultipartFile(fileHeader)
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, domain.NewInternalError("failed to open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.NewInternalError("failed to read uploaded file", err)
	}
	return data, nil
}
