package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

// ChangeKind mirrors repository change kinds on the wire.
type ChangeKind string

const (
	ChangeTransactionAdded   ChangeKind = "transaction_added"
	ChangeTransactionUpdated ChangeKind = "transaction_updated"
	ChangeTransactionDeleted ChangeKind = "transaction_deleted"
	ChangeGoalsUpserted      ChangeKind = "goals_upserted"
)

// ChangeMessage carries one collection mutation to the sync worker. The
// payload fields are populated per kind: Transaction for add/update,
// TransactionID for delete, Goals for goal upserts.
type ChangeMessage struct {
	User          auth.UserID       `json:"user"`
	Kind          ChangeKind        `json:"kind"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Goals         *core.AnnualGoals `json:"goals,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func NewChangeMessage(user auth.UserID, kind ChangeKind) *ChangeMessage {
	return &ChangeMessage{
		User:      user,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReloadMessage tells server instances that a user's remote collection
// changed underneath them. It carries no payload: receivers re-load the
// full snapshot and replace their in-memory collection wholesale.
type ReloadMessage struct {
	User      auth.UserID `json:"user"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewReloadMessage(user auth.UserID) *ReloadMessage {
	return &ReloadMessage{User: user, Timestamp: time.Now()}
}

func (m *ReloadMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReloadMessageFromJSON(data []byte) (*ReloadMessage, error) {
	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
