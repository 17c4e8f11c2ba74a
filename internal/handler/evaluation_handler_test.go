package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exam-eval/internal/domain"
	"exam-eval/internal/middleware"
	"exam-eval/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockScoreRepo struct {
	mock.Mock
}

func (m *mockScoreRepo) SaveScore(ctx context.Context, s *domain.ScoreRecord) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockScoreRepo) GetScores(ctx context.Context, studentID, paperID string) ([]*domain.ScoreRecord, error) {
	args := m.Called(ctx, studentID, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScoreRecord), args.Error(1)
}

func newTestApp(cacheMock domain.Cache, scoreRepo domain.ScoreRepository) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})

	evaluations := service.NewEvaluationService(nil, nil, nil, nil, cacheMock, "")
	reports := service.NewReportService(scoreRepo, nil, time.Hour)
	h := NewEvaluationHandler(evaluations, reports)

	api := app.Group("/api")
	api.Post("/evaluations", h.StartEvaluation)
	api.Get("/evaluations/:id", h.GetRunStatus)
	api.Get("/reports/:student_id/:paper_id", h.GetReport)
	return app
}

func TestEvaluationHandler_GetRunStatus(t *testing.T) {
	cacheMock := new(mockCache)
	cacheMock.On("Get", mock.Anything, "exameval:evaluation:run:01ARZ3NDEKTSV4RRFFQ69G5FAV").
		Return(`{"status":"completed","student_id":"stu_1","paper_id":"qp_1","total_score":3}`, nil).Once()

	app := newTestApp(cacheMock, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/evaluations/01ARZ3NDEKTSV4RRFFQ69G5FAV", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "stu_1", body["student_id"])
	assert.Equal(t, float64(3), body["total_score"])
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", body["run_id"])
}

func TestEvaluationHandler_GetRunStatus_NotFound(t *testing.T) {
	cacheMock := new(mockCache)
	cacheMock.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss).Once()

	app := newTestApp(cacheMock, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/evaluations/01BX5ZZKBKACTAV9WEVGEMMVRZ", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(domain.ErrNotFound), body.Code)
}

func TestEvaluationHandler_GetReport(t *testing.T) {
	scoreRepo := new(mockScoreRepo)
	scoreRepo.On("GetScores", mock.Anything, "stu_1", "qp_1").Return([]*domain.ScoreRecord{
		{StudentID: "stu_1", PaperID: "qp_1", Number: 1, Question: "Q1",
			Score: domain.ScoreCorrect, StudentOption: "Option2", CorrectOption: "Option2",
			Explanation: "right because", Feedback: "Great job! nice Keep up the good work!"},
	}, nil).Once()

	app := newTestApp(nil, scoreRepo)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/reports/stu_1/qp_1", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, "right because", items[0]["Explanation for correct option"])
	assert.Equal(t, float64(4), items[1]["Total Score"])
}

func TestEvaluationHandler_GetReport_NotFound(t *testing.T) {
	scoreRepo := new(mockScoreRepo)
	scoreRepo.On("GetScores", mock.Anything, "ghost", "qp_1").Return([]*domain.ScoreRecord{}, nil).Once()

	app := newTestApp(nil, scoreRepo)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/reports/ghost/qp_1", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvaluationHandler_StartEvaluation_MissingFile(t *testing.T) {
	app := newTestApp(nil, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("question", "question.pdf")
	require.NoError(t, err)
	_, err = io.WriteString(part, "%PDF-1.4 fake")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/evaluations", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(domain.ErrInvalidInput), body.Code)
}
