// Package outcome maps a consistent set of answers onto the liability rules
// of the 1910 Collision Convention.
package outcome

import (
	"fmt"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/tally"
)

// Branch is what a step contributes for one answer: paragraphs to emit and
// the step to continue with. An empty Next ends the walk.
type Branch struct {
	Paragraphs []string
	Next       string
}

// Step branches on the caller's answer to one question.
type Step struct {
	QuestionID string
	Branches   map[string]Branch
	Otherwise  Branch
}

// Tree is a named set of steps walked from Start.
type Tree struct {
	Start string
	Steps map[string]Step
}

// QuestionNotFoundError means the tree asked about a question missing from
// the evaluated results, i.e. the catalog and the tree disagree.
type QuestionNotFoundError struct {
	QuestionID string
}

func (e *QuestionNotFoundError) Error() string {
	return fmt.Sprintf("decision tree references question %q absent from results", e.QuestionID)
}

// Validate checks that every step reference resolves.
func (t *Tree) Validate() error {
	if _, ok := t.Steps[t.Start]; !ok {
		return fmt.Errorf("start step %q not defined", t.Start)
	}
	for name, s := range t.Steps {
		if s.QuestionID == "" {
			return fmt.Errorf("step %q: question id is required", name)
		}
		next := []string{s.Otherwise.Next}
		for _, b := range s.Branches {
			next = append(next, b.Next)
		}
		for _, n := range next {
			if n == "" {
				continue
			}
			if _, ok := t.Steps[n]; !ok {
				return fmt.Errorf("step %q: next step %q not defined", name, n)
			}
		}
	}
	return nil
}

// Walk follows the tree over results and concatenates each step's paragraphs.
func (t *Tree) Walk(results []tally.Result) ([]string, error) {
	var paragraphs []string
	visited := make(map[string]bool, len(t.Steps))

	for name := t.Start; name != ""; {
		if visited[name] {
			return nil, fmt.Errorf("decision tree revisits step %q", name)
		}
		visited[name] = true

		step, ok := t.Steps[name]
		if !ok {
			return nil, fmt.Errorf("decision tree step %q not defined", name)
		}
		res, err := find(results, step.QuestionID)
		if err != nil {
			return nil, err
		}

		branch, ok := step.Branches[res.YourAnswer]
		if !ok {
			branch = step.Otherwise
		}
		paragraphs = append(paragraphs, branch.Paragraphs...)
		name = branch.Next
	}
	return paragraphs, nil
}

func find(results []tally.Result, questionID string) (tally.Result, error) {
	for _, r := range results {
		if r.QuestionID == questionID {
			return r, nil
		}
	}
	return tally.Result{}, &QuestionNotFoundError{QuestionID: questionID}
}
