package ragging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const answerTimeout = 60 * time.Second

// GeminiReportAnswerer implements domain.ReportAnswerer by stuffing the full
// serialized report into the prompt as grounding context. Reports are small
// enough to fit in one request, so no vector retrieval step is needed.
type GeminiReportAnswerer struct {
	llmClient llms.Model
}

// NewGeminiReportAnswerer creates a new instance of GeminiReportAnswerer.
// It expects an initialized langchaingo model.
func NewGeminiReportAnswerer(llmClient llms.Model) domain.ReportAnswerer {
	return &GeminiReportAnswerer{llmClient: llmClient}
}

// Answer implements domain.ReportAnswerer.
func (a *GeminiReportAnswerer) Answer(ctx context.Context, reportJSON string, question string) (string, error) {
	l := logger.Get()

	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.NewInvalidInputError("question cannot be empty")
	}

	prompt := fmt.Sprintf(`You are an AI assistant specialized in analyzing and providing insights about a student's performance in exams, assessments, and studies.
Your goal is to assist students by answering their questions based ONLY on their performance data below.
Address the following aspects as applicable to the student's query:

- Identify strengths and weaknesses in specific subjects or topics.
- Offer actionable recommendations for improvement.
- Suggest effective study strategies and time management techniques.
- Provide insights into common mistakes and how to avoid them.
- Highlight areas of consistent performance and growth opportunities.

Student data:
%s

Question: %s

Respond with clear, concise, and actionable insights tailored to the student's needs.`, reportJSON, question)

	callCtx, cancel := context.WithTimeout(ctx, answerTimeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(callCtx, a.llmClient, prompt,
		llms.WithTemperature(0.0))
	if err != nil {
		l.Error("Report Q&A call failed", zap.Error(err))
		return "", domain.NewLLMServiceError(fmt.Errorf("LLM call failed: %w", err))
	}

	return strings.TrimSpace(response), nil
}
