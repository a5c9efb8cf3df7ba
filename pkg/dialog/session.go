package dialog

import (
	"time"
)

// DefaultMaxHistory is the maximum number of state records before eviction.
const DefaultMaxHistory = 1000

// StateRecord records a phase transition for audit purposes.
type StateRecord struct {
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
}

// Address identifies where replies for a conversation are delivered.
type Address struct {
	ConversationID string `json:"conversation_id"`
	ChannelID      string `json:"channel_id"`
	UserID         string `json:"user_id,omitempty"`
}

// Session is the per-conversation dialog state. It is owned by the
// conversation platform, which hands it to the engine on every turn and
// serialises turns per conversation; it is not safe for concurrent use.
type Session struct {
	maxHistory int
	turnStart  OrderState

	ID              string
	DialogName      string
	Address         Address
	Phase           Phase
	Order           OrderState
	Reprompt        bool
	Restarts        int
	LastUserMessage string
	History         []StateRecord
	StartTime       time.Time
}

// NewSession creates the session for a conversation's order dialog.
func NewSession(addr Address, dialogName string) *Session {
	return &Session{
		ID:         addr.ConversationID,
		DialogName: dialogName,
		Address:    addr,
		Phase:      Entry,
		StartTime:  time.Now(),
		maxHistory: DefaultMaxHistory,
	}
}

// Started reports whether the entry step has run.
func (s *Session) Started() bool {
	return s.Phase != Entry
}

// Done reports whether the dialog has ended.
func (s *Session) Done() bool {
	return s.Phase.Terminal()
}

// RecordTransition adds a phase transition to the audit history.
// Evicts oldest 10% of entries when the history cap is reached.
func (s *Session) RecordTransition(from, to Phase, trigger string) {
	if s.maxHistory <= 0 {
		s.maxHistory = DefaultMaxHistory
	}
	if len(s.History) >= s.maxHistory {
		evict := s.maxHistory / 10
		if evict < 1 {
			evict = 1
		}
		s.History = s.History[evict:]
	}
	s.History = append(s.History, StateRecord{
		FromState: from.String(),
		ToState:   to.String(),
		Trigger:   trigger,
		Timestamp: time.Now(),
	})
	s.Phase = to
}

// CopyHistory returns a snapshot of the state history.
func (s *Session) CopyHistory() []StateRecord {
	cp := make([]StateRecord, len(s.History))
	copy(cp, s.History)
	return cp
}

func (s *Session) beginTurn(text string) {
	s.LastUserMessage = text
	s.turnStart = s.Order.Snapshot()
}
