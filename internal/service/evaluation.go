package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"exam-eval/internal/cache"
	"exam-eval/internal/domain"
	"exam-eval/internal/logger"
	"exam-eval/internal/parser"
	"exam-eval/internal/util"

	"go.uber.org/zap"
)

const (
	runStateTTL = 24 * time.Hour
	runTimeout  = 30 * time.Minute
)

// RunState is the polled state of one evaluation run. StudentID, PaperID and
// TotalScore are filled once the run completes.
type RunState struct {
	Status     domain.RunStatus `json:"status"`
	StudentID  string           `json:"student_id,omitempty"`
	PaperID    string           `json:"paper_id,omitempty"`
	TotalScore int              `json:"total_score,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// EvaluationResult is the outcome of one synchronous pipeline run.
type EvaluationResult struct {
	StudentID string
	PaperID   string
	Report    *domain.Report
}

// EvaluationService orchestrates the full pipeline: extract the three PDFs,
// parse them, reconcile the key into the questions, generate explanations and
// score the student's sheet.
type EvaluationService struct {
	extractor    domain.TextExtractor
	reconciler   *ReconcilerService
	explanations *ExplanationService
	scoring      *ScoringService
	cache        domain.Cache
	artifactsDir string
}

// NewEvaluationService creates a new instance of EvaluationService.
// artifactsDir may be empty to disable the JSON audit trail.
func NewEvaluationService(
	extractor domain.TextExtractor,
	reconciler *ReconcilerService,
	explanations *ExplanationService,
	scoring *ScoringService,
	cacheAdapter domain.Cache,
	artifactsDir string,
) *EvaluationService {
	return &EvaluationService{
		extractor:    extractor,
		reconciler:   reconciler,
		explanations: explanations,
		scoring:      scoring,
		cache:        cacheAdapter,
		artifactsDir: artifactsDir,
	}
}

// StartEvaluation registers a new run and processes it in the background.
// The returned run ID is the handle for status polling.
func (s *EvaluationService) StartEvaluation(ctx context.Context, questionPDF, keyPDF, sheetPDF []byte) (string, error) {
	runID := util.NewULID()
	if err := s.setRunState(ctx, runID, RunState{Status: domain.RunPending}); err != nil {
		return "", err
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		l := logger.Get()
		if err := s.setRunState(runCtx, runID, RunState{Status: domain.RunProcessing}); err != nil {
			l.Error("Failed to mark run as processing", zap.Error(err), zap.String("run_id", runID))
		}

		result, err := s.Evaluate(runCtx, questionPDF, keyPDF, sheetPDF)
		if err != nil {
			l.Error("Evaluation run failed", zap.Error(err), zap.String("run_id", runID))
			if stateErr := s.setRunState(runCtx, runID, RunState{
				Status: domain.RunFailed,
				Error:  err.Error(),
			}); stateErr != nil {
				l.Error("Failed to mark run as failed", zap.Error(stateErr), zap.String("run_id", runID))
			}
			return
		}

		if stateErr := s.setRunState(runCtx, runID, RunState{
			Status:     domain.RunCompleted,
			StudentID:  result.StudentID,
			PaperID:    result.PaperID,
			TotalScore: result.Report.TotalScore,
		}); stateErr != nil {
			l.Error("Failed to mark run as completed", zap.Error(stateErr), zap.String("run_id", runID))
		}
	}()

	return runID, nil
}

// Evaluate runs the pipeline synchronously and returns the graded report.
func (s *EvaluationService) Evaluate(ctx context.Context, questionPDF, keyPDF, sheetPDF []byte) (*EvaluationResult, error) {
	l := logger.Get()

	questionText, err := s.extractor.ExtractText(questionPDF)
	if err != nil {
		return nil, err
	}
	keyText, err := s.extractor.ExtractText(keyPDF)
	if err != nil {
		return nil, err
	}
	sheetText, err := s.extractor.ExtractText(sheetPDF)
	if err != nil {
		return nil, err
	}

	questions, paperID := parser.ParseQuestionPaper(questionText)
	if len(questions) == 0 {
		return nil, domain.NewParseError("no questions found in question paper")
	}

	key, err := parser.ParseAnswerSheet(keyText)
	if err != nil {
		return nil, err
	}
	student, err := parser.ParseAnswerSheet(sheetText)
	if err != nil {
		return nil, err
	}

	// The question paper is authoritative for the paper id; sheets missing
	// their own marker inherit it.
	if student.PaperID == "" || student.PaperID == domain.UnknownID {
		student.PaperID = paperID
	}

	l.Info("Parsed evaluation inputs",
		zap.String("paper_id", paperID),
		zap.String("student_id", student.StudentID),
		zap.Int("questions", len(questions)),
		zap.Int("key_answers", len(key.Answers)),
		zap.Int("student_answers", len(student.Answers)))

	merged, err := s.reconciler.Reconcile(ctx, questions, key)
	if err != nil {
		return nil, err
	}
	s.writeArtifact(fmt.Sprintf("question_paper_%s.json", paperID), merged)
	s.writeArtifact(fmt.Sprintf("response_sheet_%s_%s.json", student.StudentID, student.PaperID), student)

	if err := s.explanations.GenerateExplanations(ctx, merged); err != nil {
		return nil, err
	}

	report, err := s.scoring.Score(ctx, student)
	if err != nil {
		return nil, err
	}
	s.writeArtifact(fmt.Sprintf("eval_report_%s_%s.json", student.StudentID, student.PaperID), report)

	return &EvaluationResult{
		StudentID: student.StudentID,
		PaperID:   student.PaperID,
		Report:    report,
	}, nil
}

// GetRunState returns the state of a run, or NOT_FOUND for an unknown or
// expired run ID.
func (s *EvaluationService) GetRunState(ctx context.Context, runID string) (*RunState, error) {
	raw, err := s.cache.Get(ctx, runStateKey(runID))
	if err != nil {
		if err == domain.ErrCacheMiss {
			return nil, domain.NewNotFoundError(fmt.Sprintf("no evaluation run with id %s", runID))
		}
		return nil, err
	}

	var state RunState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, domain.NewInternalError("failed to decode run state", err)
	}
	return &state, nil
}

func (s *EvaluationService) setRunState(ctx context.Context, runID string, state RunState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return domain.NewInternalError("failed to encode run state", err)
	}
	return s.cache.Set(ctx, runStateKey(runID), string(raw), runStateTTL)
}

func runStateKey(runID string) string {
	return cache.GenerateCacheKey("evaluation", "run", runID)
}

// writeArtifact drops a JSON snapshot into the artifacts directory. Artifact
// failures never fail the run.
func (s *EvaluationService) writeArtifact(name string, v any) {
	if s.artifactsDir == "" {
		return
	}
	l := logger.Get()

	if err := os.MkdirAll(s.artifactsDir, 0o755); err != nil {
		l.Warn("Failed to create artifacts directory", zap.Error(err), zap.String("dir", s.artifactsDir))
		return
	}

	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		l.Warn("Failed to serialize artifact", zap.Error(err), zap.String("name", name))
		return
	}

	path := filepath.Join(s.artifactsDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		l.Warn("Failed to write artifact", zap.Error(err), zap.String("path", path))
		return
	}
	l.Debug("Wrote artifact", zap.String("path", path))
}
