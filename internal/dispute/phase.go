// Package dispute runs the maritime collision module inside one dispute:
// which agents joined, what each still has to answer, and what they see.
package dispute

import (
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/catalog"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/questionnaire"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/store"
)

type Phase string

const (
	PhaseNotStarted      Phase = "NOT_STARTED"
	PhaseWaitingForOther Phase = "WAITING_FOR_OTHER"
	PhaseAnswering       Phase = "ANSWERING"
	PhaseResultsReady    Phase = "RESULTS_READY"
)

// Snapshot is everything known about a dispute at the moment of one request.
// It is built fresh for every call and never mutated.
type Snapshot struct {
	DisputeID string
	Caller    int64
	Pair      store.AgentPair
	Answers   map[int64]questionnaire.Answers
}

// NewSnapshot folds the answer history into per-agent answers. Later rows
// replace earlier ones for the same question.
func NewSnapshot(pair store.AgentPair, caller int64, history []store.Answer) Snapshot {
	answers := make(map[int64]questionnaire.Answers)
	for _, a := range history {
		if answers[a.AgentID] == nil {
			answers[a.AgentID] = questionnaire.Answers{}
		}
		answers[a.AgentID][a.QuestionID] = a.Value
	}
	return Snapshot{
		DisputeID: pair.DisputeID,
		Caller:    caller,
		Pair:      pair,
		Answers:   answers,
	}
}

// AnswersOf returns agentID's answers, never nil.
func (s Snapshot) AnswersOf(agentID int64) questionnaire.Answers {
	if a, ok := s.Answers[agentID]; ok {
		return a
	}
	return questionnaire.Answers{}
}

func (s Snapshot) bothJoined() bool {
	return s.Pair.FirstAgentID > 0 && s.Pair.SecondAgentID > 0
}

// Resolve derives the dispute's phase from the snapshot alone.
func Resolve(s Snapshot, c *catalog.Catalog) Phase {
	switch {
	case s.Pair.FirstAgentID == 0 && s.Pair.SecondAgentID == 0:
		return PhaseNotStarted
	case !s.bothJoined():
		return PhaseWaitingForOther
	}
	if questionnaire.Finished(c, s.AnswersOf(s.Pair.FirstAgentID)) &&
		questionnaire.Finished(c, s.AnswersOf(s.Pair.SecondAgentID)) {
		return PhaseResultsReady
	}
	return PhaseAnswering
}
