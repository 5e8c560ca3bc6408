package tally

import (
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/catalog"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/questionnaire"
)

// NotApplicable stands in for a question the agent never answered.
const NotApplicable = "N/A"

// Result is one question's comparison, derived fresh on every evaluation.
type Result struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question"`
	YourAnswer   string `json:"your_answer"`
	TheirAnswer  string `json:"their_answer"`
	Tally        bool   `json:"tally"`
}

// Evaluate compares both agents' answers for every catalog question, in
// catalog order. Questions neither agent reached are left out.
func (r Rules) Evaluate(c *catalog.Catalog, yours, theirs questionnaire.Answers) []Result {
	results := make([]Result, 0, c.Len())
	for _, q := range c.Questions() {
		res := Result{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			YourAnswer:   answerOrNA(yours, q.ID),
			TheirAnswer:  answerOrNA(theirs, q.ID),
		}
		if res.YourAnswer == NotApplicable && res.TheirAnswer == NotApplicable {
			continue
		}
		res.Tally = r.Tally(q.ID, res.YourAnswer, res.TheirAnswer)
		results = append(results, res)
	}
	return results
}

// AllTally reports whether every result tallies.
func AllTally(results []Result) bool {
	for _, res := range results {
		if !res.Tally {
			return false
		}
	}
	return true
}

func answerOrNA(a questionnaire.Answers, questionID string) string {
	if v, ok := a.Lookup(questionID); ok {
		return v
	}
	return NotApplicable
}
