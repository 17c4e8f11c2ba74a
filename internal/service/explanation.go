package service

import (
	"context"

	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExplanationService produces and caches per-question explanations. The
// explanation table is the durable cache: a question that already has a row,
// error marker included, is never sent to the LLM again.
type ExplanationService struct {
	generator       domain.ExplanationGenerator
	explanationRepo domain.ExplanationRepository
	maxConcurrent   int
}

// NewExplanationService creates a new instance of ExplanationService.
// maxConcurrent bounds the number of in-flight LLM calls.
func NewExplanationService(generator domain.ExplanationGenerator, explanationRepo domain.ExplanationRepository, maxConcurrent int) *ExplanationService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ExplanationService{
		generator:       generator,
		explanationRepo: explanationRepo,
		maxConcurrent:   maxConcurrent,
	}
}

// GenerateExplanations fills the explanation cache for the given questions.
// A terminal generation failure persists an error marker for that question
// and the run continues; only repository failures abort the batch.
func (s *ExplanationService) GenerateExplanations(ctx context.Context, questions []domain.QuestionRecord) error {
	l := logger.Get()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, q := range questions {
		q := q
		g.Go(func() error {
			existing, err := s.explanationRepo.GetExplanation(gctx, q.PaperID, q.Number)
			if err != nil {
				return err
			}
			if existing != nil {
				l.Debug("Explanation already cached, skipping",
					zap.String("paper_id", q.PaperID),
					zap.Int("question", q.Number))
				return nil
			}

			options := map[int]string{
				1: q.Options[0],
				2: q.Options[1],
				3: q.Options[2],
				4: q.Options[3],
			}

			record, genErr := s.generator.Explain(gctx, q.Text, options, q.CorrectOption)
			if genErr != nil {
				l.Error("Explanation generation failed, persisting error marker",
					zap.Error(genErr),
					zap.String("paper_id", q.PaperID),
					zap.Int("question", q.Number))
				marker := &domain.ExplanationRecord{
					PaperID: q.PaperID,
					Number:  q.Number,
					Failed:  true,
				}
				return s.explanationRepo.SaveExplanation(gctx, marker)
			}

			record.PaperID = q.PaperID
			record.Number = q.Number
			return s.explanationRepo.SaveExplanation(gctx, record)
		})
	}

	return g.Wait()
}
