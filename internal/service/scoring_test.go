package service

import (
	"context"
	"testing"

	"exam-eval/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func scoringFixtures() (*MockQuestionRepository, *MockExplanationRepository, *MockScoreRepository, *ScoringService) {
	questionRepo := new(MockQuestionRepository)
	explanationRepo := new(MockExplanationRepository)
	scoreRepo := new(MockScoreRepository)
	return questionRepo, explanationRepo, scoreRepo,
		NewScoringService(questionRepo, explanationRepo, scoreRepo)
}

func TestScoringService_Score(t *testing.T) {
	questionRepo, explanationRepo, scoreRepo, svc := scoringFixtures()

	student := &domain.AnswerSet{
		PaperID:   "qp_1",
		StudentID: "stu_1",
		Answers: []domain.AnswerLine{
			{Number: 1, Choice: 2},
			{Number: 2, Choice: 1},
			{Number: 3, Choice: domain.ChoiceUnattempted},
		},
	}

	questions := map[int]*domain.QuestionRecord{
		1: {PaperID: "qp_1", Number: 1, Text: "Q1", CorrectOption: "2"},
		2: {PaperID: "qp_1", Number: 2, Text: "Q2", CorrectOption: "4"},
		3: {PaperID: "qp_1", Number: 3, Text: "Q3", CorrectOption: domain.CorrectNotAvailable},
	}
	explanations := map[int]*domain.ExplanationRecord{
		1: {Subject: "Geography", Topic: "Capitals", Difficulty: 1.5, Taxonomy: "Knowledge",
			CorrectExplanation: "right because", PositiveFeedback: "solid understanding"},
		2: {Subject: "Astronomy", Topic: "Planets", Difficulty: 2.0, Taxonomy: "Knowledge",
			IncorrectAnalyses: map[int]string{1: "Venus is not red"},
			Misconceptions:    "brightest planet is assumed red",
			NegativeFeedback:  "review planetary features"},
		3: {Subject: "Math", Topic: "Arithmetic", Difficulty: 0.5, Taxonomy: "Knowledge"},
	}

	for number, q := range questions {
		questionRepo.On("GetQuestion", mock.Anything, "qp_1", number).Return(q, nil).Once()
		explanationRepo.On("GetExplanation", mock.Anything, "qp_1", number).Return(explanations[number], nil).Once()
	}
	scoreRepo.On("SaveScore", mock.Anything, mock.Anything).Return(nil).Times(3)

	report, err := svc.Score(context.Background(), student)

	require.NoError(t, err)
	require.Len(t, report.Entries, 3)
	assert.Equal(t, 3, report.TotalScore)

	correct := report.Entries[0]
	assert.Equal(t, domain.ScoreCorrect, correct.Score)
	assert.Equal(t, "Option2", correct.CorrectOption)
	assert.Equal(t, "Option2", correct.StudentOption)
	assert.Equal(t, "right because", correct.CorrectExplanation)
	assert.Equal(t, "Great job! solid understanding Keep up the good work!", correct.PositiveFeedback)
	assert.Empty(t, correct.NegativeFeedback)

	incorrect := report.Entries[1]
	assert.Equal(t, domain.ScoreIncorrect, incorrect.Score)
	assert.Equal(t, "Venus is not red", incorrect.ChosenExplanation)
	assert.Equal(t, "brightest planet is assumed red", incorrect.Misconceptions)
	assert.Equal(t,
		"Consider revisiting the key concepts related to this question. Your selected answer suggests a potential misunderstanding. review planetary features",
		incorrect.NegativeFeedback)
	assert.Empty(t, incorrect.PositiveFeedback)

	unattempted := report.Entries[2]
	assert.Equal(t, domain.ScoreUnattempted, unattempted.Score)
	assert.Equal(t, "Unattempted", unattempted.StudentOption)
	assert.Equal(t, "Unattempted", unattempted.CorrectOption)
	assert.Equal(t, "No explanation available.", unattempted.ChosenExplanation)
	assert.Equal(t, "No misconceptions available.", unattempted.Misconceptions)

	scoreRepo.AssertExpectations(t)
}

func TestScoringService_Score_SkipsMissingQuestion(t *testing.T) {
	questionRepo, explanationRepo, scoreRepo, svc := scoringFixtures()

	student := &domain.AnswerSet{
		PaperID: "qp_1", StudentID: "stu_1",
		Answers: []domain.AnswerLine{{Number: 9, Choice: 1}},
	}
	questionRepo.On("GetQuestion", mock.Anything, "qp_1", 9).Return(nil, nil).Once()

	report, err := svc.Score(context.Background(), student)

	require.NoError(t, err)
	assert.Empty(t, report.Entries)
	assert.Equal(t, 0, report.TotalScore)
	explanationRepo.AssertNotCalled(t, "GetExplanation")
	scoreRepo.AssertNotCalled(t, "SaveScore")
}

func TestScoringService_Score_SkipsFailedExplanation(t *testing.T) {
	questionRepo, explanationRepo, scoreRepo, svc := scoringFixtures()

	student := &domain.AnswerSet{
		PaperID: "qp_1", StudentID: "stu_1",
		Answers: []domain.AnswerLine{{Number: 1, Choice: 1}},
	}
	questionRepo.On("GetQuestion", mock.Anything, "qp_1", 1).
		Return(&domain.QuestionRecord{PaperID: "qp_1", Number: 1, CorrectOption: "1"}, nil).Once()
	explanationRepo.On("GetExplanation", mock.Anything, "qp_1", 1).
		Return(&domain.ExplanationRecord{PaperID: "qp_1", Number: 1, Failed: true}, nil).Once()

	report, err := svc.Score(context.Background(), student)

	require.NoError(t, err)
	assert.Empty(t, report.Entries)
	scoreRepo.AssertNotCalled(t, "SaveScore")
}

func TestScoringService_Score_AttemptAgainstUnresolvedKeyIsIncorrect(t *testing.T) {
	questionRepo, explanationRepo, scoreRepo, svc := scoringFixtures()

	student := &domain.AnswerSet{
		PaperID: "qp_1", StudentID: "stu_1",
		Answers: []domain.AnswerLine{{Number: 1, Choice: 3}},
	}
	questionRepo.On("GetQuestion", mock.Anything, "qp_1", 1).
		Return(&domain.QuestionRecord{PaperID: "qp_1", Number: 1, Text: "Q1", CorrectOption: domain.CorrectNotAvailable}, nil).Once()
	explanationRepo.On("GetExplanation", mock.Anything, "qp_1", 1).
		Return(&domain.ExplanationRecord{Subject: "Math"}, nil).Once()
	scoreRepo.On("SaveScore", mock.Anything, mock.Anything).Return(nil).Once()

	report, err := svc.Score(context.Background(), student)

	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, domain.ScoreIncorrect, report.Entries[0].Score)
	assert.Equal(t, "Unattempted", report.Entries[0].CorrectOption)
}
