package repository

import (
	"context"
	"fmt"
	"time"

	"exam-eval/internal/domain"
	"exam-eval/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// ScoreDatabaseAdapter implements domain.ScoreRepository using sqlx.DB
type ScoreDatabaseAdapter struct {
	db *sqlx.DB
}

// NewScoreDatabaseAdapter creates a new instance of ScoreDatabaseAdapter
func NewScoreDatabaseAdapter(db *sqlx.DB) domain.ScoreRepository {
	return &ScoreDatabaseAdapter{db: db}
}

// SaveScore implements domain.ScoreRepository. Rescoring the same sheet keeps
// the first graded row for each (student_id, paper_id, qno).
func (a *ScoreDatabaseAdapter) SaveScore(ctx context.Context, s *domain.ScoreRecord) error {
	if s == nil {
		return fmt.Errorf("cannot save nil score record")
	}
	model := toModelScore(s)
	model.CreatedAt = time.Now()

	query := `INSERT OR IGNORE INTO score_records (
		student_id, paper_id, qno, question, score, subject, topic, diff,
		taxonomy, stud_op, correct_op, explanation, misconceptions, feedback, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := a.db.ExecContext(ctx, query,
		model.StudentID,
		model.PaperID,
		model.Qno,
		model.Question,
		model.Score,
		model.Subject,
		model.Topic,
		model.Diff,
		model.Taxonomy,
		model.StudOp,
		model.CorrectOp,
		model.Explanation,
		model.Misconceptions,
		model.Feedback,
		model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save score for student %s question %d of paper %s: %w", s.StudentID, s.Number, s.PaperID, err)
	}
	return nil
}

// GetScores implements domain.ScoreRepository
func (a *ScoreDatabaseAdapter) GetScores(ctx context.Context, studentID, paperID string) ([]*domain.ScoreRecord, error) {
	var modelScores []models.ScoreRecord
	query := `SELECT student_id, paper_id, qno, question, score, subject, topic, diff,
	taxonomy, stud_op, correct_op, explanation, misconceptions, feedback, created_at
	FROM score_records
	WHERE student_id = ? AND paper_id = ?
	ORDER BY qno ASC`

	if err := a.db.SelectContext(ctx, &modelScores, query, studentID, paperID); err != nil {
		return nil, fmt.Errorf("failed to get scores for student %s of paper %s: %w", studentID, paperID, err)
	}

	records := make([]*domain.ScoreRecord, 0, len(modelScores))
	for i := range modelScores {
		records = append(records, toDomainScore(&modelScores[i]))
	}
	return records, nil
}

// Helper functions for model conversion
func toModelScore(d *domain.ScoreRecord) *models.ScoreRecord {
	return &models.ScoreRecord{
		StudentID:      d.StudentID,
		PaperID:        d.PaperID,
		Qno:            d.Number,
		Question:       d.Question,
		Score:          d.Score,
		Subject:        d.Subject,
		Topic:          d.Topic,
		Diff:           d.Difficulty,
		Taxonomy:       d.Taxonomy,
		StudOp:         d.StudentOption,
		CorrectOp:      d.CorrectOption,
		Explanation:    d.Explanation,
		Misconceptions: d.Misconceptions,
		Feedback:       d.Feedback,
	}
}

func toDomainScore(m *models.ScoreRecord) *domain.ScoreRecord {
	return &domain.ScoreRecord{
		StudentID:      m.StudentID,
		PaperID:        m.PaperID,
		Number:         m.Qno,
		Question:       m.Question,
		Score:          m.Score,
		Subject:        m.Subject,
		Topic:          m.Topic,
		Difficulty:     m.Diff,
		Taxonomy:       m.Taxonomy,
		StudentOption:  m.StudOp,
		CorrectOption:  m.CorrectOp,
		Explanation:    m.Explanation,
		Misconceptions: m.Misconceptions,
		Feedback:       m.Feedback,
	}
}
