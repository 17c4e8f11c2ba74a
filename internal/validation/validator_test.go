package validation

import (
	"strings"
	"testing"

	"exam-eval/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRunID(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.ValidateRunID("01ARZ3NDEKTSV4RRFFQ69G5FAV"))

	err := v.ValidateRunID("")
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrInvalidInput, err.Code)

	assert.NotNil(t, v.ValidateRunID("not-a-ulid"))
	assert.NotNil(t, v.ValidateRunID("01arz3ndektsv4rrffq69g5fav"))
}

func TestValidateReportParams(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.ValidateReportParams("stu_1", "qp_1"))
	assert.Nil(t, v.ValidateReportParams(domain.UnknownID, "qp-1"))

	assert.NotNil(t, v.ValidateReportParams("", "qp_1"))
	assert.NotNil(t, v.ValidateReportParams("stu_1", ""))
	assert.NotNil(t, v.ValidateReportParams("stu 1", "qp_1"))
	assert.NotNil(t, v.ValidateReportParams("stu_1", strings.Repeat("q", 51)))
}

func TestValidateRagRequest(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.ValidateRagRequest("stu_1", "qp_1", "Explain weak areas in Chemistry?"))

	assert.NotNil(t, v.ValidateRagRequest("stu_1", "qp_1", "   "))
	assert.NotNil(t, v.ValidateRagRequest("", "qp_1", "question"))
	assert.NotNil(t, v.ValidateRagRequest("stu_1", "qp_1", strings.Repeat("q", 2001)))
}
