package explainer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"exam-eval/internal/config"
	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const callTimeout = 90 * time.Second

// GeminiExplainer implements domain.ExplanationGenerator against the Gemini
// API via langchaingo. It carries one client per configured API key and
// rotates to the next key when a quota error comes back; after a full cycle
// it sleeps for the configured backoff before the next attempt.
type GeminiExplainer struct {
	clients     []llms.Model
	temperature float64
	maxAttempts int
	backoff     time.Duration

	mu      sync.Mutex
	current int
}

// NewGeminiExplainer creates a new instance of GeminiExplainer. One client is
// initialized per API key.
func NewGeminiExplainer(ctx context.Context, cfg config.GeminiConfig) (*GeminiExplainer, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model name cannot be empty")
	}

	clients := make([]llms.Model, 0, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		client, err := googleai.New(ctx,
			googleai.WithAPIKey(key),
			googleai.WithDefaultModel(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		clients = append(clients, client)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 60 * time.Second
	}

	logger.Get().Info("Initialized GeminiExplainer",
		zap.String("model", cfg.Model),
		zap.Int("keys", len(clients)),
		zap.Int("max_attempts", maxAttempts))

	return &GeminiExplainer{
		clients:     clients,
		temperature: cfg.Temperature,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}, nil
}

// Explain implements domain.ExplanationGenerator. Quota errors rotate the key
// and retry; any other failure, or running out of attempts, is terminal and
// the caller persists an error marker for the question.
func (g *GeminiExplainer) Explain(ctx context.Context, question string, options map[int]string, correctOption string) (*domain.ExplanationRecord, error) {
	l := logger.Get()
	prompt := buildExplainPrompt(question, options, correctOption)

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		raw, err := g.callLLM(ctx, prompt)
		if err == nil {
			record, parseErr := parseExplainResponse(raw)
			if parseErr != nil {
				l.Error("Failed to parse explanation response",
					zap.Error(parseErr),
					zap.String("raw_response", raw))
				return nil, domain.NewLLMServiceError(parseErr)
			}
			return record, nil
		}

		if !isQuotaError(err) {
			l.Error("LLM explanation call failed", zap.Error(err))
			return nil, domain.NewLLMServiceError(err)
		}

		l.Warn("API quota exceeded, switching key", zap.Error(err), zap.Int("attempt", attempt))
		if !g.switchKey() {
			l.Warn("All API keys exhausted, backing off",
				zap.Duration("backoff", g.backoff))
			select {
			case <-time.After(g.backoff):
			case <-ctx.Done():
				return nil, domain.NewLLMServiceError(ctx.Err())
			}
		}
	}

	return nil, domain.NewLLMServiceError(fmt.Errorf("explanation failed after %d attempts", g.maxAttempts))
}

func (g *GeminiExplainer) callLLM(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(callCtx, g.client(), prompt,
		llms.WithTemperature(g.temperature),
		llms.WithJSONMode())
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response, nil
}

func (g *GeminiExplainer) client() llms.Model {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clients[g.current]
}

// switchKey advances to the next API key. It returns false when the rotation
// wrapped around, meaning every key has been tried.
func (g *GeminiExplainer) switchKey() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	if g.current >= len(g.clients) {
		g.current = 0
		return false
	}
	return true
}

func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429")
}

func buildExplainPrompt(question string, options map[int]string, correctOption string) string {
	ordinals := make([]int, 0, len(options))
	for ordinal := range options {
		ordinals = append(ordinals, ordinal)
	}
	sort.Ints(ordinals)

	var optionLines strings.Builder
	for _, ordinal := range ordinals {
		fmt.Fprintf(&optionLines, "    %d) %s\n", ordinal, options[ordinal])
	}

	return fmt.Sprintf(`You are an AI Evaluation Assistant designed to analyze and evaluate questions, providing structured and comprehensive feedback.

Question: %s
Options:
%s
Correct Answer: %s

Provide explanations in the following JSON format:
{
    "Subject": "Subject name",
    "Topic": "Topic name",
    "Taxonomy": "Cognitive level (e.g., Knowledge, Application, Analysis).",
    "Question_Type": "Type of question (e.g., Calculative, Conceptual, Application-Based).",
    "Correct_Answer_Explanation": "Detailed explanation of the correct answer.",
    "Incorrect_Option_Analysis": {
        "2": "Explain why this option is incorrect and contrast it with the correct answer."
    },
    "Common_Student_Misconceptions": "List common misconceptions that students might have while answering this question.",
    "Difficulty": 2.5,
    "Positive_Feedback": "Provide detailed feedback, focusing on the student's strengths in understanding the key concepts and the topic of the question in 2-3 sentences.",
    "Negative_Feedback": "Provide detailed negative feedback, focusing on the student's misunderstanding of the key concepts and the topic, identifying the exact areas where they need improvement in 2-3 sentences."
}

Rules:
1. Incorrect_Option_Analysis must be keyed by the option number and cover only the incorrect options.
2. Difficulty is a number from 0 to 5.
3. Respond with ONLY the JSON object.`, question, optionLines.String(), correctOption)
}

type explainResponse struct {
	Subject            string                     `json:"Subject"`
	Topic              string                     `json:"Topic"`
	Taxonomy           string                     `json:"Taxonomy"`
	QuestionType       string                     `json:"Question_Type"`
	CorrectExplanation string                     `json:"Correct_Answer_Explanation"`
	IncorrectAnalysis  map[string]json.RawMessage `json:"Incorrect_Option_Analysis"`
	Misconceptions     string                     `json:"Common_Student_Misconceptions"`
	Difficulty         json.RawMessage            `json:"Difficulty"`
	PositiveFeedback   string                     `json:"Positive_Feedback"`
	NegativeFeedback   string                     `json:"Negative_Feedback"`
}

// parseExplainResponse extracts the JSON object from a raw model response and
// maps it onto a domain record. Models sometimes wrap the object in prose or
// code fences, so only the first-{ to last-} slice is parsed.
func parseExplainResponse(raw string) (*domain.ExplanationRecord, error) {
	cleaned := strings.TrimSpace(raw)

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no JSON object found in LLM response: %s", cleaned)
	}

	var resp explainResponse
	extracted := cleaned[jsonStart : jsonEnd+1]
	if err := json.Unmarshal([]byte(extracted), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from LLM (tried to parse: '%s'): %w", extracted, err)
	}

	analyses := make(map[int]string, len(resp.IncorrectAnalysis))
	for key, value := range resp.IncorrectAnalysis {
		ordinal, ok := parseOrdinalKey(key)
		if !ok {
			continue
		}
		if text := analysisText(value); text != "" {
			analyses[ordinal] = text
		}
	}

	return &domain.ExplanationRecord{
		Subject:            resp.Subject,
		Topic:              resp.Topic,
		Taxonomy:           resp.Taxonomy,
		QuestionType:       resp.QuestionType,
		CorrectExplanation: resp.CorrectExplanation,
		IncorrectAnalyses:  analyses,
		Misconceptions:     resp.Misconceptions,
		Difficulty:         parseDifficulty(resp.Difficulty),
		PositiveFeedback:   resp.PositiveFeedback,
		NegativeFeedback:   resp.NegativeFeedback,
	}, nil
}

// parseOrdinalKey accepts "2", "Option_2", "Option 2" and similar spellings.
func parseOrdinalKey(key string) (int, bool) {
	digits := strings.TrimFunc(key, func(r rune) bool {
		return r < '0' || r > '9'
	})
	ordinal, err := strconv.Atoi(digits)
	if err != nil || ordinal < 1 || ordinal > 4 {
		return 0, false
	}
	return ordinal, true
}

// analysisText flattens an analysis value. Models return either a plain
// string or an object with Type_of_Error and Description fields.
func analysisText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		TypeOfError string `json:"Type_of_Error"`
		Description string `json:"Description"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	if obj.TypeOfError != "" && obj.Description != "" {
		return obj.TypeOfError + ": " + obj.Description
	}
	if obj.Description != "" {
		return obj.Description
	}
	return obj.TypeOfError
}

// parseDifficulty tolerates both numeric and quoted-string difficulties.
func parseDifficulty(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

var _ domain.ExplanationGenerator = (*GeminiExplainer)(nil)
