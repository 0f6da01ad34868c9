// Package session holds per-chat conversation state for the process lifetime.
//
// There is deliberately no eviction: the original service keeps every chat's
// history until restart, and callers rely on that. Memory growth is bounded
// only by the number of distinct chats.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/aula-labs/tutorbot/internal/model"
	"github.com/aula-labs/tutorbot/pkg/metrics"
)

// ErrConversationNotFound is returned by AppendTurn for an unknown chat ID.
var ErrConversationNotFound = errors.New("conversation not found")

// Conversation is the ordered turn history of one chat. It is owned by the
// Store; callers read it through History and mutate it through AppendTurn.
type Conversation struct {
	ChatID    int64
	CreatedAt time.Time
	Seeded    bool

	turns []model.Turn
}

// Preamble is the fixed seed injected into a new conversation when the store
// is configured for seed mode: a user turn carrying the system instruction and
// the shared reference documents, and a fixed assistant acknowledgement.
type Preamble struct {
	Instruction     string
	Documents       []model.DocumentHandle
	Acknowledgement string
}

// Store is a concurrency-safe map from chat ID to conversation state.
type Store struct {
	mu            sync.RWMutex
	conversations map[int64]*Conversation
	preamble      *Preamble
}

// NewStore creates a store. A nil preamble disables seeding (per-call attach
// mode, or no instruction/documents configured).
func NewStore(preamble *Preamble) *Store {
	return &Store{
		conversations: make(map[int64]*Conversation),
		preamble:      preamble,
	}
}

// GetOrCreate returns the conversation for chatID, creating and seeding it on
// first sight. Repeated calls with the same ID return the same object and
// never re-seed.
func (s *Store) GetOrCreate(chatID int64) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[chatID]; ok {
		return conv
	}

	conv := &Conversation{
		ChatID:    chatID,
		CreatedAt: time.Now(),
	}
	if s.preamble != nil {
		s.seed(conv)
	}
	s.conversations[chatID] = conv
	metrics.ConversationsActive.Set(float64(len(s.conversations)))

	return conv
}

func (s *Store) seed(conv *Conversation) {
	now := time.Now()
	conv.turns = append(conv.turns,
		model.Turn{
			Role:      model.RoleUser,
			Content:   "Actúa bajo la siguiente instrucción: " + s.preamble.Instruction,
			Documents: s.preamble.Documents,
			CreatedAt: now,
		},
		model.Turn{
			Role:      model.RoleAssistant,
			Content:   s.preamble.Acknowledgement,
			CreatedAt: now,
		},
	)
	conv.Seeded = true
}

// AppendTurn appends a turn to the identified conversation. Callers are
// expected to have called GetOrCreate first in the same logical operation.
func (s *Store) AppendTurn(chatID int64, role model.Role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[chatID]
	if !ok {
		return ErrConversationNotFound
	}

	conv.turns = append(conv.turns, model.Turn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	return nil
}

// History returns a copy of the conversation's turns in chronological order.
func (s *Store) History(chatID int64) ([]model.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[chatID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	turns := make([]model.Turn, len(conv.turns))
	copy(turns, conv.turns)
	return turns, nil
}

// Len returns the number of conversations held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
