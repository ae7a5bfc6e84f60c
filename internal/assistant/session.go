// Package assistant drives the natural-language query client: an ordered
// transcript of turns, one in-flight request at a time, and bounded result
// rendering.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/bizpulse/bizdash/internal"
	"github.com/bizpulse/bizdash/internal/api"
	"github.com/google/uuid"
)

type TurnRole string

const (
	TurnUser      TurnRole = "user"
	TurnAssistant TurnRole = "assistant"
)

// Turn is one transcript entry. Turns are append-only and never mutated
// after insertion.
type Turn struct {
	ID   string
	Role TurnRole
	Text string
	// SQL is the backing query the server generated, when it shares it.
	SQL string
	// Rows holds the full result set; rendering truncates, the transcript
	// does not.
	Rows []map[string]any
}

// Fallback strings used when the server does not explain itself.
const (
	fallbackSummary = "Here are the results."
	genericFailure  = "Something went wrong."
)

// Querier is the transport the session speaks through.
type Querier interface {
	Query(ctx context.Context, query string) (api.QueryResponse, error)
}

// Session is the conversational query state machine. It is Idle when no
// request is in flight and Pending otherwise; submissions while Pending are
// rejected at the boundary, never queued.
type Session struct {
	client Querier
	logger *slog.Logger

	mu      sync.Mutex
	turns   []Turn
	pending bool
	closed  bool
}

func NewSession(client Querier, logger *slog.Logger) *Session {
	return &Session{client: client, logger: logger}
}

var ErrEmptyQuery = internal.NewValidationError("query text is empty", internal.ErrCodeInvalidQuery)

// Ask submits one question. The user turn is appended synchronously before
// the request is issued; the assistant turn is appended only once the
// request settles. A request failure is local to its turn: it lands in the
// transcript and Ask still returns nil. Ask returns an error only for
// boundary rejections (empty text, already pending, session closed), none
// of which touch the transcript.
func (s *Session) Ask(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyQuery
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return internal.ErrSessionClosed
	}
	if s.pending {
		s.mu.Unlock()
		return internal.ErrQueryPending
	}
	s.pending = true
	s.turns = append(s.turns, Turn{
		ID:   uuid.NewString(),
		Role: TurnUser,
		Text: text,
	})
	s.mu.Unlock()

	resp, err := s.client.Query(ctx, text)
	s.settle(resp, err)
	return nil
}

// AskPrompt submits a quick prompt. It is the same path as typed input by
// contract, not a shortcut.
func (s *Session) AskPrompt(ctx context.Context, prompt string) error {
	return s.Ask(ctx, prompt)
}

func (s *Session) settle(resp api.QueryResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = false

	// The hosting view tore down while the request was in flight. The
	// response arrives against now-absent state and is discarded.
	if s.closed {
		s.logger.Debug("discarding response for closed conversation session")
		return
	}

	if err != nil {
		text := genericFailure
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.ServerMessage != "" {
			text = apiErr.ServerMessage
		}
		s.logger.Warn("conversational query failed", "error", err)
		s.turns = append(s.turns, Turn{
			ID:   uuid.NewString(),
			Role: TurnAssistant,
			Text: text,
		})
		return
	}

	summary := resp.Summary
	if summary == "" {
		summary = fallbackSummary
	}
	s.turns = append(s.turns, Turn{
		ID:   uuid.NewString(),
		Role: TurnAssistant,
		Text: summary,
		SQL:  resp.SQLQuery,
		Rows: resp.Results,
	})
}

// Pending reports whether a request is in flight. Callers disable
// submission while true.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Transcript returns a copy of the turns in strict issuance order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Close marks the session torn down. The transcript is session-scoped and
// not persisted; any late-settling response after Close is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.turns = nil
}
