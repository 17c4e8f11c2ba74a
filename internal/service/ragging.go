package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"exam-eval/internal/cache"
	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"go.uber.org/zap"
)

// RagService answers free-form questions about a student's performance,
// grounded on the serialized evaluation report. Answers are cached per
// question so repeated queries skip the LLM.
type RagService struct {
	reports  *ReportService
	answerer domain.ReportAnswerer
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewRagService creates a new instance of RagService. A nil cache disables
// answer caching.
func NewRagService(reports *ReportService, answerer domain.ReportAnswerer, cacheAdapter domain.Cache, cacheTTL time.Duration) *RagService {
	return &RagService{
		reports:  reports,
		answerer: answerer,
		cache:    cacheAdapter,
		cacheTTL: cacheTTL,
	}
}

// AnswerQuestion answers a question about one student's report for one paper.
func (s *RagService) AnswerQuestion(ctx context.Context, studentID, paperID, question string) (string, error) {
	l := logger.Get()

	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.NewInvalidInputError("question cannot be empty")
	}

	cacheKey := cache.GenerateCacheKey("rag", "answer", studentID, paperID, hashQuestion(question))
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			l.Debug("RAG answer cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			l.Warn("RAG answer cache read failed", zap.Error(err), zap.String("key", cacheKey))
		}
	}

	reportJSON, err := s.reports.GetReportJSON(ctx, studentID, paperID)
	if err != nil {
		return "", err
	}

	answer, err := s.answerer.Answer(ctx, reportJSON, question)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, answer, s.cacheTTL); err != nil {
			l.Warn("RAG answer cache write failed", zap.Error(err), zap.String("key", cacheKey))
		}
	}

	return answer, nil
}

func hashQuestion(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(question)))
	return hex.EncodeToString(sum[:8])
}
