package service

import (
	"context"
	"time"

	"exam-eval/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuestionRepository ---
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) SaveQuestion(ctx context.Context, q *domain.QuestionRecord) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetQuestion(ctx context.Context, paperID string, number int) (*domain.QuestionRecord, error) {
	args := m.Called(ctx, paperID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuestionRecord), args.Error(1)
}

func (m *MockQuestionRepository) GetQuestions(ctx context.Context, paperID string) ([]*domain.QuestionRecord, error) {
	args := m.Called(ctx, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuestionRecord), args.Error(1)
}

// --- MockExplanationRepository ---
type MockExplanationRepository struct {
	mock.Mock
}

func (m *MockExplanationRepository) SaveExplanation(ctx context.Context, e *domain.ExplanationRecord) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExplanationRepository) GetExplanation(ctx context.Context, paperID string, number int) (*domain.ExplanationRecord, error) {
	args := m.Called(ctx, paperID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExplanationRecord), args.Error(1)
}

// --- MockScoreRepository ---
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) SaveScore(ctx context.Context, s *domain.ScoreRecord) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockScoreRepository) GetScores(ctx context.Context, studentID, paperID string) ([]*domain.ScoreRecord, error) {
	args := m.Called(ctx, studentID, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScoreRecord), args.Error(1)
}

// --- MockTextExtractor ---
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

// --- MockExplanationGenerator ---
type MockExplanationGenerator struct {
	mock.Mock
}

func (m *MockExplanationGenerator) Explain(ctx context.Context, question string, options map[int]string, correctOption string) (*domain.ExplanationRecord, error) {
	args := m.Called(ctx, question, options, correctOption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExplanationRecord), args.Error(1)
}

// --- MockReportAnswerer ---
type MockReportAnswerer struct {
	mock.Mock
}

func (m *MockReportAnswerer) Answer(ctx context.Context, reportJSON string, question string) (string, error) {
	args := m.Called(ctx, reportJSON, question)
	return args.String(0), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
