package dispute

import (
	"errors"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/catalog"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/outcome"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/questionnaire"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/tally"
)

type ViewKind string

const (
	ViewOnboarding ViewKind = "onboarding"
	ViewWaiting    ViewKind = "waiting"
	ViewQuestions  ViewKind = "questions"
	ViewResults    ViewKind = "results"
)

const (
	WaitingForInitiation = "the other agent to initiate the maritime collision module."
	WaitingForAnswers    = "the other agent to answer some questions."
)

// View is what one agent sees of the module. Exactly one of the optional
// parts is set, depending on Kind.
type View struct {
	Kind       ViewKind           `json:"kind"`
	Phase      Phase              `json:"phase"`
	DisputeID  string             `json:"dispute_id"`
	WaitingFor string             `json:"waiting_for,omitempty"`
	Questions  []catalog.Question `json:"questions,omitempty"`
	Results    []tally.Result     `json:"results,omitempty"`
	Summary    []string           `json:"summary,omitempty"`
}

// Engine bundles the immutable legal knowledge: the questions, how answers
// are compared and how an agreed account maps to an outcome.
type Engine struct {
	Catalog *catalog.Catalog
	Rules   tally.Rules
	Tree    *outcome.Tree
}

// NewEngine returns the Convention engine over c.
func NewEngine(c *catalog.Catalog, arrestBarAnswer string) Engine {
	return Engine{
		Catalog: c,
		Rules:   tally.DefaultRules,
		Tree:    outcome.ConventionTree(arrestBarAnswer),
	}
}

// Pending returns the questions agentID still has to answer.
func (e Engine) Pending(s Snapshot, agentID int64) []catalog.Question {
	return questionnaire.Pending(e.Catalog, s.AnswersOf(agentID))
}

// Evaluate compares the caller's answers with the other agent's and
// summarizes the outcome. Before both agents have finished, a tree that runs
// into an unanswered question yields the results with no summary.
func (e Engine) Evaluate(s Snapshot) ([]tally.Result, []string, error) {
	results := e.Rules.Evaluate(e.Catalog, s.AnswersOf(s.Caller), s.AnswersOf(s.Pair.Other(s.Caller)))
	summary, err := e.Tree.Summarize(results)
	if err != nil {
		var notFound *outcome.QuestionNotFoundError
		if errors.As(err, &notFound) && Resolve(s, e.Catalog) != PhaseResultsReady {
			return results, nil, nil
		}
		return nil, nil, err
	}
	return results, summary, nil
}

// Render picks the caller's view. Callers outside the agent pair always get
// onboarding.
func (e Engine) Render(s Snapshot) (*View, error) {
	v := &View{
		Phase:     Resolve(s, e.Catalog),
		DisputeID: s.DisputeID,
	}

	if !s.Pair.Has(s.Caller) {
		v.Kind = ViewOnboarding
		return v, nil
	}

	if !s.bothJoined() {
		v.Kind = ViewWaiting
		v.WaitingFor = WaitingForInitiation
		return v, nil
	}

	if pending := e.Pending(s, s.Caller); len(pending) > 0 {
		v.Kind = ViewQuestions
		v.Questions = pending
		return v, nil
	}

	if v.Phase != PhaseResultsReady {
		v.Kind = ViewWaiting
		v.WaitingFor = WaitingForAnswers
		return v, nil
	}

	results, summary, err := e.Evaluate(s)
	if err != nil {
		return nil, err
	}
	v.Kind = ViewResults
	v.Results = results
	v.Summary = summary
	return v, nil
}
