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
	// questionStartRe marks the beginning of a numbered block. Blocks run to
	// the next start or end of text, so option text never leaks across
	// questions.
	questionStartRe = regexp.MustCompile(`\d+\.\s`)

	// questionBlockRe matches one full block: number, question text, and the
	// four options. Non-greedy captures keep each option within its own
	// marker pair. A block without all four markers does not match and is
	// dropped, consistent with best-effort extraction.
	questionBlockRe = regexp.MustCompile(`(?s)\A(\d+)\.\s(.*?)A\)(.*?)B\)(.*?)C\)(.*?)D\)(.*)\z`)
)

// ParseQuestionPaper parses extracted question-paper text into question
// records plus the extracted question-paper-id (domain.UnknownID when the
// marker is missing). Records come back in order of appearance with
// CorrectOption unset; the Reconciler attaches the key. Malformed blocks and
// duplicate question numbers (first occurrence wins) are skipped silently.
func ParseQuestionPaper(text string) ([]domain.QuestionRecord, string) {
	paperID := extractID(questionPaperIDRe, text)

	starts := questionStartRe.FindAllStringIndex(text, -1)
	records := make([]domain.QuestionRecord, 0, len(starts))
	seen := make(map[int]bool)

	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		block := text[start[0]:end]

		m := questionBlockRe.FindStringSubmatch(block)
		if m == nil {
			logger.Get().Debug("Skipping malformed question block",
				zap.String("paper_id", paperID),
				zap.Int("block_offset", start[0]))
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if seen[number] {
			logger.Get().Debug("Duplicate question number ignored",
				zap.String("paper_id", paperID),
				zap.Int("question_number", number))
			continue
		}
		seen[number] = true

		rec := domain.QuestionRecord{
			PaperID: paperID,
			Number:  number,
			Text:    strings.TrimSpace(m[2]),
		}
		for j := 0; j < 4; j++ {
			opt := strings.TrimSpace(m[3+j])
			if opt == "" {
				opt = domain.OptionNA
			}
			rec.Options[j] = opt
		}
		records = append(records, rec)
	}
	return records, paperID
}
