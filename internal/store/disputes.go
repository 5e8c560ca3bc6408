package store

import (
	"fmt"
	"time"
)

// AgentPair records which two platform agents joined a dispute. Zero means
// the slot is still open. Slot order carries no meaning.
type AgentPair struct {
	DisputeID     string    `json:"dispute_id"`
	FirstAgentID  int64     `json:"first_agent_id"`
	SecondAgentID int64     `json:"second_agent_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Other returns the agent paired with agentID, or 0 if there is none yet.
func (p AgentPair) Other(agentID int64) int64 {
	switch agentID {
	case p.FirstAgentID:
		return p.SecondAgentID
	case p.SecondAgentID:
		return p.FirstAgentID
	}
	return 0
}

// Has reports whether agentID holds one of the slots.
func (p AgentPair) Has(agentID int64) bool {
	return agentID != 0 && (agentID == p.FirstAgentID || agentID == p.SecondAgentID)
}

const pairColumns = `id, first_agent_id, second_agent_id, created_at`

// GetAgentPair returns the dispute's pair, creating an empty row on first
// access.
func (s *Store) GetAgentPair(disputeID string) (*AgentPair, error) {
	if _, err := s.db.Exec(`INSERT INTO disputes (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, disputeID); err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}

	p := &AgentPair{}
	err := s.db.QueryRow(`SELECT `+pairColumns+` FROM disputes WHERE id = ?`, disputeID).
		Scan(&p.DisputeID, &p.FirstAgentID, &p.SecondAgentID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get agent pair: %w", err)
	}
	return p, nil
}

// ClaimAgentSlot assigns agentID to the first open slot. Each UPDATE only
// touches a still-open slot, so concurrent claims cannot both win the same
// one. Claiming again, or claiming a full pair, changes nothing.
func (s *Store) ClaimAgentSlot(disputeID string, agentID int64) (*AgentPair, error) {
	if _, err := s.GetAgentPair(disputeID); err != nil {
		return nil, err
	}

	res, err := s.db.Exec(`
		UPDATE disputes SET first_agent_id = ?
		WHERE id = ? AND first_agent_id = 0 AND second_agent_id != ?`,
		agentID, disputeID, agentID)
	if err != nil {
		return nil, fmt.Errorf("claim first slot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err := s.db.Exec(`
			UPDATE disputes SET second_agent_id = ?
			WHERE id = ? AND second_agent_id = 0 AND first_agent_id != 0 AND first_agent_id != ?`,
			agentID, disputeID, agentID)
		if err != nil {
			return nil, fmt.Errorf("claim second slot: %w", err)
		}
	}

	return s.GetAgentPair(disputeID)
}

func (s *Store) ListAgentPairs() ([]AgentPair, error) {
	rows, err := s.db.Query(`SELECT ` + pairColumns + ` FROM disputes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list disputes: %w", err)
	}
	defer rows.Close()

	var pairs []AgentPair
	for rows.Next() {
		var p AgentPair
		if err := rows.Scan(&p.DisputeID, &p.FirstAgentID, &p.SecondAgentID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dispute: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
