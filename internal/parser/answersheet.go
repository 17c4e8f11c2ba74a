// Package parser turns the plain text extracted from exam PDFs into domain
// records. Regex matching is confined to this package; it is a best-effort
// boundary, so malformed lines and blocks are dropped rather than surfaced.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"go.uber.org/zap"
)

var (
	questionPaperIDRe = regexp.MustCompile(`(?i)\bquestion[\s_-]*paper[\s_-]*id[:\s]*(\w+)`)
	studentIDRe       = regexp.MustCompile(`(?i)\bstudent[\s_-]*id[:\s]*(\w+)`)
	answerLineRe      = regexp.MustCompile(`(?i)(\d+)\.\s*([A-D]|Unattempted)`)
)

// ParseAnswerSheet parses an answer key or a student response sheet. Both use
// the same layout: optional "Question Paper ID"/"Student ID" markers anywhere
// in the text, and one "N. X" line per answer with X in A-D or "Unattempted".
//
// Identifiers degrade to domain.UnknownID when a marker is missing. The call
// fails only when the text carries no marker and no answer line at all.
// Duplicate question numbers keep the first occurrence, matching the
// insert-if-absent persistence downstream.
func ParseAnswerSheet(text string) (*domain.AnswerSet, error) {
	set := &domain.AnswerSet{
		PaperID:   extractID(questionPaperIDRe, text),
		StudentID: extractID(studentIDRe, text),
	}

	seen := make(map[int]bool)
	for _, m := range answerLineRe.FindAllStringSubmatch(text, -1) {
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		choice, ok := domain.ParseChoice(m[2])
		if !ok {
			continue
		}
		if seen[number] {
			logger.Get().Debug("Duplicate answer line ignored",
				zap.Int("question_number", number))
			continue
		}
		seen[number] = true
		set.Answers = append(set.Answers, domain.AnswerLine{Number: number, Choice: choice})
	}

	if set.PaperID == domain.UnknownID && set.StudentID == domain.UnknownID && len(set.Answers) == 0 {
		return nil, domain.NewParseError("no identifiers or answer lines found in sheet text")
	}
	return set, nil
}

// extractID returns the lowercased captured token, or domain.UnknownID. The
// lowercasing keeps identifiers stable regardless of how the PDF renders them.
func extractID(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return domain.UnknownID
	}
	return strings.ToLower(m[1])
}
