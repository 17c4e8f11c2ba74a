package domain

import "context"

// TextExtractor turns raw PDF bytes into plain text. A corrupt or unreadable
// file yields an EXTRACTION_ERROR, which is fatal for that upload.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// ExplanationGenerator is the gateway to the LLM explanation service. Options
// are keyed by ordinal 1-4; correctOption is the ordinal string or
// CorrectNotAvailable. Transient provider failures (rate limits, quota) are
// handled inside the implementation via key rotation and backoff; a returned
// error is terminal for this question and the caller persists an error marker.
type ExplanationGenerator interface {
	Explain(ctx context.Context, question string, options map[int]string, correctOption string) (*ExplanationRecord, error)
}

// ReportAnswerer answers a free-form question grounded on a student's
// serialized evaluation report.
type ReportAnswerer interface {
	Answer(ctx context.Context, reportJSON string, question string) (string, error)
}

// QuestionRepository persists merged questions per question-paper.
// SaveQuestion has insert-if-absent semantics: re-saving an existing
// (paper_id, number) pair is a no-op, never an overwrite.
type QuestionRepository interface {
	SaveQuestion(ctx context.Context, q *QuestionRecord) error
	GetQuestion(ctx context.Context, paperID string, number int) (*QuestionRecord, error)
	GetQuestions(ctx context.Context, paperID string) ([]*QuestionRecord, error)
}

// ExplanationRepository is the durable explanation cache keyed by
// (paper_id, number). Get returns (nil, nil) on a miss.
type ExplanationRepository interface {
	SaveExplanation(ctx context.Context, e *ExplanationRecord) error
	GetExplanation(ctx context.Context, paperID string, number int) (*ExplanationRecord, error)
}

// ScoreRepository persists graded rows per student. SaveScore has
// insert-if-absent semantics under (student_id, paper_id, number).
type ScoreRepository interface {
	SaveScore(ctx context.Context, s *ScoreRecord) error
	GetScores(ctx context.Context, studentID, paperID string) ([]*ScoreRecord, error)
}
