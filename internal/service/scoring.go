package service

import (
	"context"
	"fmt"

	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"go.uber.org/zap"
)

// Feedback templates wrapped around the generated highlights.
const (
	positiveFeedbackFormat = "Great job! %s Keep up the good work!"
	negativeFeedbackPrefix = "Consider revisiting the key concepts related to this question. Your selected answer suggests a potential misunderstanding. "
)

// Fallback strings for explanation fields that came back empty.
const (
	noQuestionAvailable       = "No question available."
	noExplanationAvailable    = "No explanation available."
	noHighlightsAvailable     = "No highlights available."
	noMisconceptionsAvailable = "No misconceptions available."
	noFeedbackAvailable       = "No feedback available."
	unknownField              = "Unknown"
)

// ScoringService grades a student's answers deterministically against the
// merged questions and their cached explanations.
type ScoringService struct {
	questionRepo    domain.QuestionRepository
	explanationRepo domain.ExplanationRepository
	scoreRepo       domain.ScoreRepository
}

// NewScoringService creates a new instance of ScoringService.
func NewScoringService(questionRepo domain.QuestionRepository, explanationRepo domain.ExplanationRepository, scoreRepo domain.ScoreRepository) *ScoringService {
	return &ScoringService{
		questionRepo:    questionRepo,
		explanationRepo: explanationRepo,
		scoreRepo:       scoreRepo,
	}
}

// Score grades every answer on the student's sheet. Answers whose question or
// explanation is absent, or whose explanation is an error marker, are skipped.
// Graded rows are persisted with insert-if-absent semantics and the full
// report is returned, ending with the total score.
func (s *ScoringService) Score(ctx context.Context, student *domain.AnswerSet) (*domain.Report, error) {
	l := logger.Get()
	report := &domain.Report{}

	for _, answer := range student.Answers {
		question, err := s.questionRepo.GetQuestion(ctx, student.PaperID, answer.Number)
		if err != nil {
			return nil, err
		}
		if question == nil {
			l.Debug("No question record for answer, skipping",
				zap.String("paper_id", student.PaperID),
				zap.Int("question", answer.Number))
			continue
		}

		explanation, err := s.explanationRepo.GetExplanation(ctx, student.PaperID, answer.Number)
		if err != nil {
			return nil, err
		}
		if explanation == nil || explanation.Failed {
			l.Debug("No usable explanation for answer, skipping",
				zap.String("paper_id", student.PaperID),
				zap.Int("question", answer.Number))
			continue
		}

		entry := s.gradeAnswer(question, explanation, answer.Choice)
		report.Entries = append(report.Entries, entry)
		report.TotalScore += entry.Score

		if err := s.scoreRepo.SaveScore(ctx, scoreFromEntry(student.StudentID, student.PaperID, entry)); err != nil {
			return nil, err
		}
	}

	l.Info("Scored answer sheet",
		zap.String("student_id", student.StudentID),
		zap.String("paper_id", student.PaperID),
		zap.Int("graded", len(report.Entries)),
		zap.Int("total_score", report.TotalScore))
	return report, nil
}

func (s *ScoringService) gradeAnswer(question *domain.QuestionRecord, explanation *domain.ExplanationRecord, choice domain.Choice) domain.ReportEntry {
	correctChoice := question.CorrectChoice()
	isCorrect := choice.Attempted() && choice == correctChoice

	var score int
	switch {
	case !choice.Attempted():
		score = domain.ScoreUnattempted
	case isCorrect:
		score = domain.ScoreCorrect
	default:
		score = domain.ScoreIncorrect
	}

	entry := domain.ReportEntry{
		QuestionNumber: question.Number,
		Question:       orDefault(question.Text, noQuestionAvailable),
		Score:          score,
		Subject:        orDefault(explanation.Subject, unknownField),
		Topic:          orDefault(explanation.Topic, unknownField),
		Difficulty:     explanation.Difficulty,
		Taxonomy:       orDefault(explanation.Taxonomy, unknownField),
		CorrectOption:  question.CorrectLabel(),
		StudentOption:  choice.Label(),
	}

	if isCorrect {
		entry.CorrectExplanation = orDefault(explanation.CorrectExplanation, noExplanationAvailable)
		highlights := orDefault(explanation.PositiveFeedback, noHighlightsAvailable)
		entry.PositiveFeedback = fmt.Sprintf(positiveFeedbackFormat, highlights)
	} else {
		entry.ChosenExplanation = orDefault(explanation.AnalysisFor(choice), noExplanationAvailable)
		entry.Misconceptions = orDefault(explanation.Misconceptions, noMisconceptionsAvailable)
		negative := orDefault(explanation.NegativeFeedback, noFeedbackAvailable)
		entry.NegativeFeedback = negativeFeedbackPrefix + negative
	}

	return entry
}

func scoreFromEntry(studentID, paperID string, entry domain.ReportEntry) *domain.ScoreRecord {
	record := &domain.ScoreRecord{
		StudentID:     studentID,
		PaperID:       paperID,
		Number:        entry.QuestionNumber,
		Question:      entry.Question,
		Score:         entry.Score,
		Subject:       entry.Subject,
		Topic:         entry.Topic,
		Difficulty:    entry.Difficulty,
		Taxonomy:      entry.Taxonomy,
		StudentOption: entry.StudentOption,
		CorrectOption: entry.CorrectOption,
	}
	if entry.PositiveFeedback != "" {
		record.Explanation = entry.CorrectExplanation
		record.Feedback = entry.PositiveFeedback
	} else {
		record.Explanation = entry.ChosenExplanation
		record.Misconceptions = entry.Misconceptions
		record.Feedback = entry.NegativeFeedback
	}
	return record
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
