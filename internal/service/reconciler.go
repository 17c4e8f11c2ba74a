package service

import (
	"context"
	"strconv"

	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"go.uber.org/zap"
)

// ReconcilerService merges the parsed answer key into parsed questions and
// persists the merged records.
type ReconcilerService struct {
	questionRepo domain.QuestionRepository
}

// NewReconcilerService creates a new instance of ReconcilerService.
func NewReconcilerService(questionRepo domain.QuestionRepository) *ReconcilerService {
	return &ReconcilerService{questionRepo: questionRepo}
}

// Reconcile attaches the correct option from the key to each question and
// saves the result. A key entry of Unattempted is persisted as such; only a
// question whose number is absent from the key entirely gets
// domain.CorrectNotAvailable. Both are data, not errors. Saves are
// insert-if-absent, so reprocessing a known paper never rewrites rows.
func (s *ReconcilerService) Reconcile(ctx context.Context, questions []domain.QuestionRecord, key *domain.AnswerSet) ([]domain.QuestionRecord, error) {
	l := logger.Get()
	merged := make([]domain.QuestionRecord, 0, len(questions))

	for _, q := range questions {
		choice, found := key.Lookup(q.Number)
		switch {
		case !found:
			q.CorrectOption = domain.CorrectNotAvailable
			l.Warn("No answer key entry for question",
				zap.String("paper_id", q.PaperID),
				zap.Int("question", q.Number))
		case choice.Attempted():
			q.CorrectOption = strconv.Itoa(int(choice))
		default:
			q.CorrectOption = choice.Label()
		}

		if err := s.questionRepo.SaveQuestion(ctx, &q); err != nil {
			return nil, err
		}
		merged = append(merged, q)
	}

	l.Info("Reconciled question paper with answer key",
		zap.Int("questions", len(merged)))
	return merged, nil
}
