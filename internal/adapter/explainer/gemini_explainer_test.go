package explainer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExplainResponse(t *testing.T) {
	raw := "Here is the analysis:\n```json\n" + `{
		"Subject": "Geography",
		"Topic": "European Capitals",
		"Taxonomy": "Knowledge",
		"Question_Type": "Factual",
		"Correct_Answer_Explanation": "Paris is the capital of France.",
		"Incorrect_Option_Analysis": {
			"2": "London is the capital of the UK.",
			"Option_3": {"Type_of_Error": "Conceptual Error", "Description": "Berlin is the capital of Germany."}
		},
		"Common_Student_Misconceptions": "Large cities are assumed to be capitals.",
		"Difficulty": 1.5,
		"Positive_Feedback": "Good recall.",
		"Negative_Feedback": "Review European geography."
	}` + "\n```"

	record, err := parseExplainResponse(raw)

	require.NoError(t, err)
	assert.Equal(t, "Geography", record.Subject)
	assert.Equal(t, "Knowledge", record.Taxonomy)
	assert.Equal(t, 1.5, record.Difficulty)
	assert.Equal(t, "London is the capital of the UK.", record.IncorrectAnalyses[2])
	assert.Equal(t, "Conceptual Error: Berlin is the capital of Germany.", record.IncorrectAnalyses[3])
	assert.False(t, record.Failed)
}

func TestParseExplainResponse_StringDifficulty(t *testing.T) {
	record, err := parseExplainResponse(`{"Difficulty": "3.5", "Subject": "Math"}`)

	require.NoError(t, err)
	assert.Equal(t, 3.5, record.Difficulty)
}

func TestParseExplainResponse_NoJSON(t *testing.T) {
	_, err := parseExplainResponse("I could not produce an analysis.")

	assert.Error(t, err)
}

func TestParseExplainResponse_MalformedJSON(t *testing.T) {
	_, err := parseExplainResponse(`{"Subject": `)

	assert.Error(t, err)
}

func TestParseExplainResponse_DropsBadAnalysisKeys(t *testing.T) {
	record, err := parseExplainResponse(`{
		"Incorrect_Option_Analysis": {"5": "out of range", "none": "not an ordinal", "1": "kept"}
	}`)

	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "kept"}, record.IncorrectAnalyses)
}

func TestParseOrdinalKey(t *testing.T) {
	tests := []struct {
		key     string
		ordinal int
		ok      bool
	}{
		{"1", 1, true},
		{"4", 4, true},
		{"Option_2", 2, true},
		{"Option 3", 3, true},
		{"5", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		ordinal, ok := parseOrdinalKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		if tt.ok {
			assert.Equal(t, tt.ordinal, ordinal, tt.key)
		}
	}
}

func TestIsQuotaError(t *testing.T) {
	assert.True(t, isQuotaError(errors.New("googleapi: Error 429: Resource has been exhausted")))
	assert.True(t, isQuotaError(errors.New("quota exceeded for metric")))
	assert.False(t, isQuotaError(errors.New("invalid request")))
	assert.False(t, isQuotaError(nil))
}

func TestBuildExplainPrompt(t *testing.T) {
	prompt := buildExplainPrompt("What is 2+2?", map[int]string{1: "3", 2: "4"}, "2")

	assert.Contains(t, prompt, "Question: What is 2+2?")
	assert.Contains(t, prompt, "1) 3")
	assert.Contains(t, prompt, "2) 4")
	assert.Contains(t, prompt, "Correct Answer: 2")
	assert.True(t, strings.Index(prompt, "1) 3") < strings.Index(prompt, "2) 4"))
}
