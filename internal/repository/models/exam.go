package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AnalysisMap stores the incorrect-option analyses as a JSON object in a
// single column, keyed by the option ordinal digit ("1".."4").
type AnalysisMap map[string]string

// Value implements the driver.Valuer interface
func (m AnalysisMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (m *AnalysisMap) Scan(value interface{}) error {
	if value == nil {
		*m = AnalysisMap{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("AnalysisMap Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*m = AnalysisMap{}
		return nil
	}
	return json.Unmarshal(bytesToParse, m)
}

// Question is one merged question row, scoped by (paper_id, qno).
type Question struct {
	PaperID   string    `db:"paper_id"`
	Qno       int       `db:"qno"`
	Question  string    `db:"question"`
	Op1       string    `db:"op1"`
	Op2       string    `db:"op2"`
	Op3       string    `db:"op3"`
	Op4       string    `db:"op4"`
	CorrectOp string    `db:"correct_op"`
	CreatedAt time.Time `db:"created_at"`
}

// Explanation is one cached gateway result, scoped by (paper_id, qno).
// Failed marks the error-marker rows excluded from scoring.
type Explanation struct {
	PaperID           string      `db:"paper_id"`
	Qno               int         `db:"qno"`
	Diff              float64     `db:"diff"`
	Subject           string      `db:"subject"`
	Topic             string      `db:"topic"`
	CorrExpl          string      `db:"corr_expl"`
	IncorrectAnalyses AnalysisMap `db:"incorrect_analyses"`
	Misconceptions    string      `db:"misconceptions"`
	QuestionType      string      `db:"question_type"`
	Taxonomy          string      `db:"taxonomy"`
	PositiveFeedback  string      `db:"positive_feedback"`
	NegativeFeedback  string      `db:"negative_feedback"`
	Failed            int         `db:"failed"`
	CreatedAt         time.Time   `db:"created_at"`
}

// ScoreRecord is one graded row, scoped by (student_id, paper_id, qno).
type ScoreRecord struct {
	StudentID      string    `db:"student_id"`
	PaperID        string    `db:"paper_id"`
	Qno            int       `db:"qno"`
	Question       string    `db:"question"`
	Score          int       `db:"score"`
	Subject        string    `db:"subject"`
	Topic          string    `db:"topic"`
	Diff           float64   `db:"diff"`
	Taxonomy       string    `db:"taxonomy"`
	StudOp         string    `db:"stud_op"`
	CorrectOp      string    `db:"correct_op"`
	Explanation    string    `db:"explanation"`
	Misconceptions string    `db:"misconceptions"`
	Feedback       string    `db:"feedback"`
	CreatedAt      time.Time `db:"created_at"`
}
