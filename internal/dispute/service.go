package dispute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/notify"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/questionnaire"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/store"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/tally"
)

var (
	ErrInvalidAgent      = errors.New("invalid agent id")
	ErrNotParticipant    = errors.New("agent has not initiated the maritime collision module")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrPrerequisiteUnmet = errors.New("question prerequisites not met")
)

const (
	MessageInitiated = "The other agent has just agreed to the maritime collision disclaimer."
	MessageAnswered  = "The other agent has just answered a maritime collision question."
)

// Service applies agent actions to disputes and assembles their views.
type Service struct {
	store    *store.Store
	engine   Engine
	notifier notify.Notifier
	baseURL  string
}

func NewService(s *store.Store, engine Engine, notifier notify.Notifier, baseURL string) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{
		store:    s,
		engine:   engine,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (s *Service) Engine() Engine {
	return s.engine
}

// DisputeURL is the page of the module inside the dispute.
func (s *Service) DisputeURL(disputeID string) string {
	return s.baseURL + "/disputes/" + disputeID + "/maritime-collision"
}

// Initiate records agentID's agreement to the disclaimer by claiming a free
// slot. Repeats and third parties leave the pair as it is. The other agent is
// notified either way.
func (s *Service) Initiate(ctx context.Context, disputeID string, agentID int64) (_ *store.AgentPair, err error) {
	ctx, span := startSpan(ctx, "dispute.Initiate", disputeID, agentID)
	defer func() { endSpan(span, err) }()

	if agentID <= 0 {
		return nil, ErrInvalidAgent
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pair, err := s.store.ClaimAgentSlot(disputeID, agentID)
	if err != nil {
		return nil, err
	}
	slog.Info("maritime collision initiated", "dispute", disputeID, "agent", agentID,
		"first", pair.FirstAgentID, "second", pair.SecondAgentID)

	notify.Send(s.notifier, notify.New(disputeID, agentID, pair.Other(agentID), MessageInitiated, s.DisputeURL(disputeID)))
	return pair, nil
}

// Submit records a batch of answers from agentID in catalog order, then
// notifies the other agent. The whole batch is rejected if any question id
// is unknown or any value is not one of the question's options.
func (s *Service) Submit(ctx context.Context, disputeID string, agentID int64, answers map[string]string) (err error) {
	ctx, span := startSpan(ctx, "dispute.Submit", disputeID, agentID)
	defer func() { endSpan(span, err) }()

	if agentID <= 0 {
		return ErrInvalidAgent
	}

	c := s.engine.Catalog
	for id, value := range answers {
		q, ok := c.Get(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
		}
		if !q.Allows(value) {
			return fmt.Errorf("%w: %q for %s", ErrInvalidAnswer, value, id)
		}
	}

	snap, err := s.Snapshot(ctx, disputeID, agentID)
	if err != nil {
		return err
	}
	pair := snap.Pair
	if !pair.Has(agentID) {
		return ErrNotParticipant
	}
	if len(answers) == 0 {
		return nil
	}

	// Prerequisites may be met by earlier answers or by the batch itself.
	merged := questionnaire.Answers{}
	for id, value := range snap.AnswersOf(agentID) {
		merged[id] = value
	}
	for id, value := range answers {
		merged[id] = value
	}
	for id := range answers {
		q, _ := c.Get(id)
		if !merged.Satisfies(q) {
			return fmt.Errorf("%w: %s", ErrPrerequisiteUnmet, id)
		}
	}

	batch := make([]store.Answer, 0, len(answers))
	for _, q := range c.Questions() {
		if value, ok := answers[q.ID]; ok {
			batch = append(batch, store.Answer{
				DisputeID:  disputeID,
				AgentID:    agentID,
				QuestionID: q.ID,
				Value:      value,
			})
		}
	}
	if err := s.store.SaveAnswers(ctx, batch); err != nil {
		return err
	}
	slog.Info("answers recorded", "dispute", disputeID, "agent", agentID, "count", len(batch))

	notify.Send(s.notifier, notify.New(disputeID, agentID, pair.Other(agentID), MessageAnswered, s.DisputeURL(disputeID)))
	return nil
}

// Snapshot reads the dispute's current state as seen by caller. The dispute
// row is created on first access.
func (s *Service) Snapshot(ctx context.Context, disputeID string, caller int64) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	pair, err := s.store.GetAgentPair(disputeID)
	if err != nil {
		return Snapshot{}, err
	}
	history, err := s.store.ListAnswers(disputeID)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(*pair, caller, history), nil
}

// View returns what caller currently sees of the dispute.
func (s *Service) View(ctx context.Context, disputeID string, caller int64) (_ *View, err error) {
	ctx, span := startSpan(ctx, "dispute.View", disputeID, caller)
	defer func() { endSpan(span, err) }()

	snap, err := s.Snapshot(ctx, disputeID, caller)
	if err != nil {
		return nil, err
	}
	return s.engine.Render(snap)
}

// Evaluate compares caller's answers with the other agent's regardless of
// whether questioning has finished.
func (s *Service) Evaluate(ctx context.Context, disputeID string, caller int64) (_ []tally.Result, _ []string, err error) {
	ctx, span := startSpan(ctx, "dispute.Evaluate", disputeID, caller)
	defer func() { endSpan(span, err) }()

	snap, err := s.Snapshot(ctx, disputeID, caller)
	if err != nil {
		return nil, nil, err
	}
	if !snap.Pair.Has(caller) {
		return nil, nil, ErrNotParticipant
	}
	return s.engine.Evaluate(snap)
}

// Outstanding is an agent who still has questions to answer.
type Outstanding struct {
	DisputeID string
	AgentID   int64
	Questions int
}

// Outstanding lists, for every dispute in the answering phase, each agent
// with unanswered questions.
func (s *Service) Outstanding(ctx context.Context) ([]Outstanding, error) {
	pairs, err := s.store.ListAgentPairs()
	if err != nil {
		return nil, err
	}

	var out []Outstanding
	for _, p := range pairs {
		if p.FirstAgentID == 0 || p.SecondAgentID == 0 {
			continue
		}
		snap, err := s.Snapshot(ctx, p.DisputeID, 0)
		if err != nil {
			return nil, err
		}
		if Resolve(snap, s.engine.Catalog) != PhaseAnswering {
			continue
		}
		for _, agent := range []int64{p.FirstAgentID, p.SecondAgentID} {
			if n := len(s.engine.Pending(snap, agent)); n > 0 {
				out = append(out, Outstanding{DisputeID: p.DisputeID, AgentID: agent, Questions: n})
			}
		}
	}
	return out, nil
}

// Notify sends a notification about the dispute in the background.
func (s *Service) Notify(disputeID string, to int64, message string) {
	notify.Send(s.notifier, notify.New(disputeID, 0, to, message, s.DisputeURL(disputeID)))
}

// PhaseCounts tallies every known dispute by phase.
func (s *Service) PhaseCounts(ctx context.Context) (map[Phase]int, error) {
	pairs, err := s.store.ListAgentPairs()
	if err != nil {
		return nil, err
	}

	counts := make(map[Phase]int)
	for _, p := range pairs {
		snap, err := s.Snapshot(ctx, p.DisputeID, 0)
		if err != nil {
			return nil, err
		}
		counts[Resolve(snap, s.engine.Catalog)]++
	}
	return counts, nil
}
