package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Answer is one recorded answer. Rows are never updated; a later row for the
// same agent and question supersedes earlier ones.
type Answer struct {
	ID         int64     `json:"id"`
	DisputeID  string    `json:"dispute_id"`
	AgentID    int64     `json:"agent_id"`
	QuestionID string    `json:"question_id"`
	Value      string    `json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Store) SaveAnswer(a *Answer) error {
	result, err := s.db.Exec(`
		INSERT INTO answers (dispute_id, agent_id, question_id, answer)
		VALUES (?, ?, ?, ?)`,
		a.DisputeID, a.AgentID, a.QuestionID, a.Value)
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	a.ID, _ = result.LastInsertId()
	return nil
}

// SaveAnswers records a batch of answers in one transaction, in slice order.
func (s *Store) SaveAnswers(ctx context.Context, answers []Answer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answers (dispute_id, agent_id, question_id, answer)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range answers {
		a := &answers[i]
		result, err := stmt.ExecContext(ctx, a.DisputeID, a.AgentID, a.QuestionID, a.Value)
		if err != nil {
			return fmt.Errorf("save answer %s: %w", a.QuestionID, err)
		}
		a.ID, _ = result.LastInsertId()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit answers: %w", err)
	}
	return nil
}

// GetAnswer returns the latest answer by agentID to questionID, or nil.
func (s *Store) GetAnswer(disputeID string, agentID int64, questionID string) (*Answer, error) {
	a := &Answer{}
	err := s.db.QueryRow(`
		SELECT id, dispute_id, agent_id, question_id, answer, created_at
		FROM answers
		WHERE dispute_id = ? AND agent_id = ? AND question_id = ?
		ORDER BY id DESC
		LIMIT 1`, disputeID, agentID, questionID).
		Scan(&a.ID, &a.DisputeID, &a.AgentID, &a.QuestionID, &a.Value, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return a, nil
}

// ListAnswers returns every answer recorded in the dispute, oldest first.
func (s *Store) ListAnswers(disputeID string) ([]Answer, error) {
	rows, err := s.db.Query(`
		SELECT id, dispute_id, agent_id, question_id, answer, created_at
		FROM answers
		WHERE dispute_id = ?
		ORDER BY id`, disputeID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.DisputeID, &a.AgentID, &a.QuestionID, &a.Value, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
