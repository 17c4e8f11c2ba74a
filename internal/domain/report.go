package domain

import "encoding/json"

// ReportEntry is one graded row of the evaluation report. The JSON field
// names are the report's wire contract; branch-specific fields are omitted
// on the other branch.
type ReportEntry struct {
	QuestionNumber int     `json:"Question Number"`
	Question       string  `json:"Question"`
	Score          int     `json:"Score"`
	Subject        string  `json:"Subject"`
	Topic          string  `json:"Topic"`
	Difficulty     float64 `json:"Difficulty"`
	Taxonomy       string  `json:"Taxonomy"`
	CorrectOption  string  `json:"Correct Option"`
	StudentOption  string  `json:"Student Option"`

	// Correct branch
	CorrectExplanation string `json:"Explanation for correct option,omitempty"`
	PositiveFeedback   string `json:"Positive Feedback,omitempty"`

	// Incorrect / unattempted branch
	ChosenExplanation string `json:"Explanation for the option chosen,omitempty"`
	Misconceptions    string `json:"Common Misconceptions,omitempty"`
	NegativeFeedback  string `json:"Negative Feedback,omitempty"`
}

// Report is the ordered sequence of graded entries. It serializes as a JSON
// array terminated by the {"Total Score": N} sentinel; the sentinel carries
// no question number and must not be treated as a gradable row.
type Report struct {
	Entries    []ReportEntry
	TotalScore int
}

// MarshalJSON implements the json.Marshaler interface
func (r Report) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, 0, len(r.Entries)+1)
	for _, e := range r.Entries {
		b, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	sentinel, err := json.Marshal(map[string]int{"Total Score": r.TotalScore})
	if err != nil {
		return nil, err
	}
	items = append(items, sentinel)
	return json.Marshal(items)
}
