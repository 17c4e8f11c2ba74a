package validation

import (
	"fmt"
	"regexp"
	"strings"

	"exam-eval/internal/domain"
)

const maxQuestionLength = 2000

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRunID validates an evaluation run id path parameter
func (v *Validator) ValidateRunID(runID string) *domain.DomainError {
	if strings.TrimSpace(runID) == "" {
		return domain.NewInvalidInputError("run id is required")
	}
	if !isValidULID(runID) {
		return domain.NewInvalidInputError("run id must be a valid ULID")
	}
	return nil
}

// ValidateReportParams validates the student and paper path parameters
func (v *Validator) ValidateReportParams(studentID, paperID string) *domain.DomainError {
	if strings.TrimSpace(studentID) == "" {
		return domain.NewInvalidInputError("student id is required")
	}
	if !isValidIdentifier(studentID) {
		return domain.NewInvalidInputError("student id has an invalid format")
	}
	if strings.TrimSpace(paperID) == "" {
		return domain.NewInvalidInputError("paper id is required")
	}
	if !isValidIdentifier(paperID) {
		return domain.NewInvalidInputError("paper id has an invalid format")
	}
	return nil
}

// ValidateRagRequest validates a report Q&A request
func (v *Validator) ValidateRagRequest(studentID, paperID, question string) *domain.DomainError {
	if err := v.ValidateReportParams(studentID, paperID); err != nil {
		return err
	}
	if strings.TrimSpace(question) == "" {
		return domain.NewInvalidInputError("question cannot be empty")
	}
	if len(question) > maxQuestionLength {
		return domain.NewInvalidInputError(fmt.Sprintf("question exceeds %d characters", maxQuestionLength))
	}
	return nil
}

// Helper functions for validation

var (
	validULID       = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	validIdentifier = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, Crockford base32 encoded
	return len(s) == 26 && validULID.MatchString(s)
}

// isValidIdentifier checks a parsed student or paper id. The UnknownID
// sentinel is a legal identifier.
func isValidIdentifier(s string) bool {
	return len(s) > 0 && len(s) <= 50 && validIdentifier.MatchString(s)
}
