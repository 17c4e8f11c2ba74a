package dto

// StartEvaluationResponse acknowledges an accepted evaluation run.
type StartEvaluationResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// RunStatusResponse is the polled state of an evaluation run.
type RunStatusResponse struct {
	RunID      string `json:"run_id"`
	Status     string `json:"status"`
	StudentID  string `json:"student_id,omitempty"`
	PaperID    string `json:"paper_id,omitempty"`
	TotalScore int    `json:"total_score,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RagRequest asks a question about one student's evaluation report.
type RagRequest struct {
	StudentID string `json:"student_id"`
	PaperID   string `json:"paper_id"`
	Question  string `json:"question"`
}

// RagResponse carries the generated answer.
type RagResponse struct {
	Answer string `json:"answer"`
}
