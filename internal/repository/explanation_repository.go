package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"exam-eval/internal/domain"
	"exam-eval/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// ExplanationDatabaseAdapter implements domain.ExplanationRepository using
// sqlx.DB. Rows are the durable cache that spares repeat LLM calls; error
// markers are stored with failed = 1.
type ExplanationDatabaseAdapter struct {
	db *sqlx.DB
}

// NewExplanationDatabaseAdapter creates a new instance of ExplanationDatabaseAdapter
func NewExplanationDatabaseAdapter(db *sqlx.DB) domain.ExplanationRepository {
	return &ExplanationDatabaseAdapter{db: db}
}

// SaveExplanation implements domain.ExplanationRepository
func (a *ExplanationDatabaseAdapter) SaveExplanation(ctx context.Context, e *domain.ExplanationRecord) error {
	if e == nil {
		return fmt.Errorf("cannot save nil explanation")
	}
	model := toModelExplanation(e)
	model.CreatedAt = time.Now()

	query := `INSERT OR IGNORE INTO explanations (
		paper_id, qno, diff, subject, topic, corr_expl, incorrect_analyses,
		misconceptions, question_type, taxonomy, positive_feedback, negative_feedback,
		failed, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := a.db.ExecContext(ctx, query,
		model.PaperID,
		model.Qno,
		model.Diff,
		model.Subject,
		model.Topic,
		model.CorrExpl,
		model.IncorrectAnalyses,
		model.Misconceptions,
		model.QuestionType,
		model.Taxonomy,
		model.PositiveFeedback,
		model.NegativeFeedback,
		model.Failed,
		model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save explanation %d of paper %s: %w", e.Number, e.PaperID, err)
	}
	return nil
}

// GetExplanation implements domain.ExplanationRepository. Returns (nil, nil)
// on a cache miss.
func (a *ExplanationDatabaseAdapter) GetExplanation(ctx context.Context, paperID string, number int) (*domain.ExplanationRecord, error) {
	var model models.Explanation
	query := `SELECT paper_id, qno, diff, subject, topic, corr_expl, incorrect_analyses,
	misconceptions, question_type, taxonomy, positive_feedback, negative_feedback,
	failed, created_at
	FROM explanations
	WHERE paper_id = ? AND qno = ?`

	err := a.db.GetContext(ctx, &model, query, paperID, number)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get explanation %d of paper %s: %w", number, paperID, err)
	}
	return toDomainExplanation(&model), nil
}

// Helper functions for model conversion
func toModelExplanation(d *domain.ExplanationRecord) *models.Explanation {
	analyses := make(models.AnalysisMap, len(d.IncorrectAnalyses))
	for ordinal, text := range d.IncorrectAnalyses {
		analyses[strconv.Itoa(ordinal)] = text
	}
	failed := 0
	if d.Failed {
		failed = 1
	}
	return &models.Explanation{
		PaperID:           d.PaperID,
		Qno:               d.Number,
		Diff:              d.Difficulty,
		Subject:           d.Subject,
		Topic:             d.Topic,
		CorrExpl:          d.CorrectExplanation,
		IncorrectAnalyses: analyses,
		Misconceptions:    d.Misconceptions,
		QuestionType:      d.QuestionType,
		Taxonomy:          d.Taxonomy,
		PositiveFeedback:  d.PositiveFeedback,
		NegativeFeedback:  d.NegativeFeedback,
		Failed:            failed,
	}
}

func toDomainExplanation(m *models.Explanation) *domain.ExplanationRecord {
	analyses := make(map[int]string, len(m.IncorrectAnalyses))
	for key, text := range m.IncorrectAnalyses {
		ordinal, err := strconv.Atoi(key)
		if err != nil || ordinal < 1 || ordinal > 4 {
			continue
		}
		analyses[ordinal] = text
	}
	return &domain.ExplanationRecord{
		PaperID:            m.PaperID,
		Number:             m.Qno,
		Difficulty:         m.Diff,
		Subject:            m.Subject,
		Topic:              m.Topic,
		CorrectExplanation: m.CorrExpl,
		IncorrectAnalyses:  analyses,
		Misconceptions:     m.Misconceptions,
		QuestionType:       m.QuestionType,
		Taxonomy:           m.Taxonomy,
		PositiveFeedback:   m.PositiveFeedback,
		NegativeFeedback:   m.NegativeFeedback,
		Failed:             m.Failed != 0,
	}
}
