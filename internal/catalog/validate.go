package catalog

import (
	"errors"
	"fmt"
)

// validate checks required fields, id uniqueness, prerequisite references and
// that no question transitively requires itself.
func validate(questions []Question) error {
	ids := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("question[%d]: id is required", i)
		}
		if q.Text == "" {
			return fmt.Errorf("question %q: text is required", q.ID)
		}
		if ids[q.ID] {
			return fmt.Errorf("question %q: duplicate id", q.ID)
		}
		ids[q.ID] = true
	}

	for _, q := range questions {
		for _, p := range q.Prerequisites {
			if p.QuestionID == "" {
				return fmt.Errorf("question %q: prerequisite question_id is required", q.ID)
			}
			if !ids[p.QuestionID] {
				return fmt.Errorf("question %q: prerequisite references unknown question %q", q.ID, p.QuestionID)
			}
		}
	}

	return checkAcyclic(questions)
}

// checkAcyclic runs Kahn's algorithm over prerequisite -> question edges.
func checkAcyclic(questions []Question) error {
	edges := make(map[string][]string)
	inDegree := make(map[string]int, len(questions))
	for _, q := range questions {
		inDegree[q.ID] += 0
		for _, p := range q.Prerequisites {
			edges[p.QuestionID] = append(edges[p.QuestionID], q.ID)
			inDegree[q.ID]++
		}
	}

	queue := make([]string, 0, len(questions))
	for _, q := range questions {
		if inDegree[q.ID] == 0 {
			queue = append(queue, q.ID)
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++

		for _, next := range edges[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if processed != len(questions) {
		return errors.New("prerequisites contain a cycle")
	}
	return nil
}
