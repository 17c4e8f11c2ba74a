package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exam-eval/internal/cache"
	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"go.uber.org/zap"
)

// ReportService rebuilds evaluation reports from persisted score rows and
// serves them through a short-lived cache.
type ReportService struct {
	scoreRepo domain.ScoreRepository
	cache     domain.Cache
	cacheTTL  time.Duration
}

// NewReportService creates a new instance of ReportService. A nil cache
// disables caching.
func NewReportService(scoreRepo domain.ScoreRepository, cacheAdapter domain.Cache, cacheTTL time.Duration) *ReportService {
	return &ReportService{
		scoreRepo: scoreRepo,
		cache:     cacheAdapter,
		cacheTTL:  cacheTTL,
	}
}

// GetReportJSON returns the serialized report for a student and paper. The
// report ends with the total-score sentinel. A student with no graded rows
// yields a NOT_FOUND error.
func (s *ReportService) GetReportJSON(ctx context.Context, studentID, paperID string) (string, error) {
	l := logger.Get()
	cacheKey := cache.GenerateCacheKey("report", "student", studentID, paperID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			l.Debug("Report cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			l.Warn("Report cache read failed", zap.Error(err), zap.String("key", cacheKey))
		}
	}

	scores, err := s.scoreRepo.GetScores(ctx, studentID, paperID)
	if err != nil {
		return "", err
	}
	if len(scores) == 0 {
		return "", domain.NewNotFoundError(fmt.Sprintf("no evaluation report for student %s and paper %s", studentID, paperID))
	}

	report := reportFromScores(scores)
	raw, err := json.Marshal(report)
	if err != nil {
		return "", domain.NewInternalError("failed to serialize report", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, string(raw), s.cacheTTL); err != nil {
			l.Warn("Report cache write failed", zap.Error(err), zap.String("key", cacheKey))
		}
	}

	return string(raw), nil
}

// reportFromScores reassembles report entries from graded rows. The scoring
// branch is recovered from the score value: a full-credit row carries the
// correct-branch fields, everything else the incorrect branch.
func reportFromScores(scores []*domain.ScoreRecord) domain.Report {
	report := domain.Report{Entries: make([]domain.ReportEntry, 0, len(scores))}

	for _, rec := range scores {
		entry := domain.ReportEntry{
			QuestionNumber: rec.Number,
			Question:       rec.Question,
			Score:          rec.Score,
			Subject:        rec.Subject,
			Topic:          rec.Topic,
			Difficulty:     rec.Difficulty,
			Taxonomy:       rec.Taxonomy,
			CorrectOption:  rec.CorrectOption,
			StudentOption:  rec.StudentOption,
		}
		if rec.Score == domain.ScoreCorrect {
			entry.CorrectExplanation = rec.Explanation
			entry.PositiveFeedback = rec.Feedback
		} else {
			entry.ChosenExplanation = rec.Explanation
			entry.Misconceptions = rec.Misconceptions
			entry.NegativeFeedback = rec.Feedback
		}
		report.Entries = append(report.Entries, entry)
		report.TotalScore += rec.Score
	}

	return report
}
