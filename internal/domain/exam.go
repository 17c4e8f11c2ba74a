package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// UnknownID is the sentinel used when a PDF carries no readable
	// question-paper-id or student-id marker.
	UnknownID = "Unknown"

	// OptionNA fills option slots for questions whose option text could not
	// be extracted.
	OptionNA = "NA"

	// CorrectNotAvailable marks a merged question whose number has no entry
	// in the answer key. It is a data value, not an error.
	CorrectNotAvailable = "Not Available"
)

// Scores per graded answer.
const (
	ScoreCorrect     = 4
	ScoreIncorrect   = -1
	ScoreUnattempted = 0
)

// Choice is the option selected on an answer line: ordinal 1-4, or
// ChoiceUnattempted for a literal "Unattempted" entry.
type Choice int

const ChoiceUnattempted Choice = 0

// Attempted reports whether the choice names a real option.
func (c Choice) Attempted() bool {
	return c >= 1 && c <= 4
}

// Label renders the choice the way reports spell it: "Option1".."Option4"
// or "Unattempted".
func (c Choice) Label() string {
	if !c.Attempted() {
		return "Unattempted"
	}
	return fmt.Sprintf("Option%d", int(c))
}

// ParseChoice maps an answer-sheet token (A-D in any case, or "Unattempted"
// in any case) to a Choice. The second return value is false for anything else.
func ParseChoice(token string) (Choice, bool) {
	switch token {
	case "A", "a":
		return 1, true
	case "B", "b":
		return 2, true
	case "C", "c":
		return 3, true
	case "D", "d":
		return 4, true
	}
	if strings.EqualFold(token, "Unattempted") {
		return ChoiceUnattempted, true
	}
	return ChoiceUnattempted, false
}

// AnswerLine is one parsed "N. X" entry.
type AnswerLine struct {
	Number int
	Choice Choice
}

// AnswerSet is one parsed sheet: the official key (PaperID scope) or a
// student's responses (StudentID scope). It lives in memory for the duration
// of a single evaluation run.
type AnswerSet struct {
	PaperID   string
	StudentID string
	Answers   []AnswerLine
}

// Lookup returns the choice recorded for a question number. With the
// first-occurrence-wins duplicate policy applied at parse time, numbers are
// unique, but Lookup still returns the earliest entry if a caller builds an
// AnswerSet by hand.
func (s *AnswerSet) Lookup(number int) (Choice, bool) {
	for _, a := range s.Answers {
		if a.Number == number {
			return a.Choice, true
		}
	}
	return ChoiceUnattempted, false
}

// QuestionRecord is one extracted question scoped to a question paper.
// CorrectOption holds the ordinal as a string ("1".."4") once the Reconciler
// attaches the key, "Unattempted" when the key lists the question as such, or
// CorrectNotAvailable when the key has no entry at all. Records are never
// mutated after the initial insert-if-absent write.
type QuestionRecord struct {
	PaperID       string
	Number        int
	Text          string
	Options       [4]string
	CorrectOption string
}

// CorrectChoice parses CorrectOption; ChoiceUnattempted when unresolved.
func (q *QuestionRecord) CorrectChoice() Choice {
	n, err := strconv.Atoi(q.CorrectOption)
	if err != nil || n < 1 || n > 4 {
		return ChoiceUnattempted
	}
	return Choice(n)
}

// CorrectLabel renders the correct option for reports, falling back to
// "Unattempted" when the key never resolved.
func (q *QuestionRecord) CorrectLabel() string {
	return q.CorrectChoice().Label()
}

// ExplanationRecord is the cached gateway output for one question. A record
// with Failed set is the error marker: it exists so repeated runs skip the
// question without another LLM call, and the Scoring Engine never grades it.
type ExplanationRecord struct {
	PaperID            string
	Number             int
	Subject            string
	Topic              string
	Difficulty         float64
	Taxonomy           string
	QuestionType       string
	CorrectExplanation string
	// IncorrectAnalyses is keyed by the option ordinal the analysis refers to.
	IncorrectAnalyses map[int]string
	Misconceptions    string
	PositiveFeedback  string
	NegativeFeedback  string
	Failed            bool
}

// AnalysisFor returns the incorrect-option analysis for an ordinal, or "" when
// none was produced for it.
func (e *ExplanationRecord) AnalysisFor(choice Choice) string {
	if e.IncorrectAnalyses == nil || !choice.Attempted() {
		return ""
	}
	return e.IncorrectAnalyses[int(choice)]
}

// ScoreRecord is one graded answer for one student, append-only under
// (student-id, paper-id, question-number).
type ScoreRecord struct {
	StudentID      string
	PaperID        string
	Number         int
	Question       string
	Score          int
	Subject        string
	Topic          string
	Difficulty     float64
	Taxonomy       string
	StudentOption  string
	CorrectOption  string
	Explanation    string
	Misconceptions string
	Feedback       string
}

// RunStatus is the per-run job state polled by callers.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)
