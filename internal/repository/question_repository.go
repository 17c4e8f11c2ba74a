package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"exam-eval/internal/domain"
	"exam-eval/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.DB
type QuestionDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionDatabaseAdapter{db: db}
}

// SaveQuestion implements domain.QuestionRepository. INSERT OR IGNORE keeps
// re-processing the same paper a per-row no-op.
func (a *QuestionDatabaseAdapter) SaveQuestion(ctx context.Context, q *domain.QuestionRecord) error {
	if q == nil {
		return fmt.Errorf("cannot save nil question")
	}
	model := toModelQuestion(q)
	model.CreatedAt = time.Now()

	query := `INSERT OR IGNORE INTO questions (
		paper_id, qno, question, op1, op2, op3, op4, correct_op, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := a.db.ExecContext(ctx, query,
		model.PaperID,
		model.Qno,
		model.Question,
		model.Op1,
		model.Op2,
		model.Op3,
		model.Op4,
		model.CorrectOp,
		model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save question %d of paper %s: %w", q.Number, q.PaperID, err)
	}
	return nil
}

// GetQuestion implements domain.QuestionRepository. Returns (nil, nil) when
// the question is absent.
func (a *QuestionDatabaseAdapter) GetQuestion(ctx context.Context, paperID string, number int) (*domain.QuestionRecord, error) {
	var model models.Question
	query := `SELECT paper_id, qno, question, op1, op2, op3, op4, correct_op, created_at
	FROM questions
	WHERE paper_id = ? AND qno = ?`

	err := a.db.GetContext(ctx, &model, query, paperID, number)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question %d of paper %s: %w", number, paperID, err)
	}
	return toDomainQuestion(&model), nil
}

// GetQuestions implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) GetQuestions(ctx context.Context, paperID string) ([]*domain.QuestionRecord, error) {
	var modelQuestions []models.Question
	query := `SELECT paper_id, qno, question, op1, op2, op3, op4, correct_op, created_at
	FROM questions
	WHERE paper_id = ?
	ORDER BY qno ASC`

	if err := a.db.SelectContext(ctx, &modelQuestions, query, paperID); err != nil {
		return nil, fmt.Errorf("failed to get questions of paper %s: %w", paperID, err)
	}

	records := make([]*domain.QuestionRecord, 0, len(modelQuestions))
	for i := range modelQuestions {
		records = append(records, toDomainQuestion(&modelQuestions[i]))
	}
	return records, nil
}

// Helper functions for model conversion
func toModelQuestion(d *domain.QuestionRecord) *models.Question {
	return &models.Question{
		PaperID:   d.PaperID,
		Qno:       d.Number,
		Question:  d.Text,
		Op1:       d.Options[0],
		Op2:       d.Options[1],
		Op3:       d.Options[2],
		Op4:       d.Options[3],
		CorrectOp: d.CorrectOption,
	}
}

func toDomainQuestion(m *models.Question) *domain.QuestionRecord {
	return &domain.QuestionRecord{
		PaperID:       m.PaperID,
		Number:        m.Qno,
		Text:          m.Question,
		Options:       [4]string{m.Op1, m.Op2, m.Op3, m.Op4},
		CorrectOption: m.CorrectOp,
	}
}
