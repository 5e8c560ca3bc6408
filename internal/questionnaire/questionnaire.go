// Package questionnaire decides which catalog questions an agent still has
// to answer.
package questionnaire

import "github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/catalog"

// Answers holds one agent's answers keyed by question id. When an agent
// answered the same question more than once, callers keep the latest value.
type Answers map[string]string

// Lookup returns the answer to questionID and whether one exists.
func (a Answers) Lookup(questionID string) (string, bool) {
	v, ok := a[questionID]
	return v, ok
}

// Satisfies reports whether every prerequisite of q holds in a. A
// prerequisite holds only when the agent answered its question with exactly
// the required value.
func (a Answers) Satisfies(q catalog.Question) bool {
	for _, p := range q.Prerequisites {
		v, ok := a[p.QuestionID]
		if !ok || v != p.RequiredAnswer {
			return false
		}
	}
	return true
}

// Pending returns, in catalog order, the questions the agent has not answered
// and whose prerequisites are satisfied by the agent's own answers.
func Pending(c *catalog.Catalog, answers Answers) []catalog.Question {
	var pending []catalog.Question
	for _, q := range c.Questions() {
		if _, answered := answers[q.ID]; answered {
			continue
		}
		if answers.Satisfies(q) {
			pending = append(pending, q)
		}
	}
	return pending
}

// Finished reports whether the agent has no pending questions.
func Finished(c *catalog.Catalog, answers Answers) bool {
	return len(Pending(c, answers)) == 0
}
