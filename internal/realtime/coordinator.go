package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kaeeraventures/expertchat/internal/model/chat"
)

// Transcripts is the slice of the transcript store the coordinator needs.
type Transcripts interface {
	Append(ctx context.Context, sessionID, category string, entries ...chat.Message) error
	Category(ctx context.Context, sessionID string) (string, error)
}

// ReplyFunc produces the automated answer for a visitor message.
type ReplyFunc func(text, category string) string

// Coordinator runs the per-message pipeline: classify the sender, decide on
// an automated reply, persist, then broadcast to the session's members.
// A striped per-session lock keeps events of one session strictly ordered
// while different sessions proceed in parallel.
type Coordinator struct {
	registry        *Registry
	transcripts     Transcripts
	reply           ReplyFunc
	defaultCategory string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator wires the dispatch pipeline.
func NewCoordinator(registry *Registry, transcripts Transcripts, reply ReplyFunc, defaultCategory string) *Coordinator {
	return &Coordinator{
		registry:        registry,
		transcripts:     transcripts,
		reply:           reply,
		defaultCategory: defaultCategory,
		locks:           make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) sessionLock(sessionID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[sessionID] = lock
	}
	return lock
}

// resolveCategory prefers the event's own category, then the session record,
// then the default. Must be called under the session lock.
func (c *Coordinator) resolveCategory(ctx context.Context, ev MessageEvent) string {
	if ev.Category != "" {
		return ev.Category
	}
	if stored, err := c.transcripts.Category(ctx, ev.SessionID); err == nil && stored != "" {
		return stored
	}
	return c.defaultCategory
}

// HandleMessage processes one inbound chat message end to end and returns
// the automated reply, if one was produced. The broadcast only happens after
// the append succeeds; on failure the error goes back to the caller alone.
func (c *Coordinator) HandleMessage(ctx context.Context, ev MessageEvent) (*string, error) {
	lock := c.sessionLock(ev.SessionID)
	lock.Lock()
	defer lock.Unlock()

	category := c.resolveCategory(ctx, ev)

	entries := []chat.Message{{Sender: ev.Sender, Content: ev.Text}}

	// Admin messages never get an automated answer; visitors get exactly one
	// per session, after which the human operator is assumed to take over.
	var reply *string
	if ev.Sender != chat.SenderAdmin && !c.registry.HasAnswered(ev.SessionID) {
		text := c.reply(ev.Text, category)
		reply = &text
		c.registry.MarkAnswered(ev.SessionID)
		entries = append(entries, chat.Message{Sender: chat.SenderAI, Content: text})
	}

	if err := c.transcripts.Append(ctx, ev.SessionID, category, entries...); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	frame := NewFrame(EventMessage, ev.SessionID, MessagePayload{
		Sender: ev.Sender,
		Text:   ev.Text,
		Reply:  reply,
	})
	for _, member := range c.registry.Members(ev.SessionID) {
		if err := member.Send(frame); err != nil {
			log.Debug().
				Err(err).
				Str("session_id", ev.SessionID).
				Str("conn_id", member.ID()).
				Msg("broadcast delivery failed")
		}
	}

	return reply, nil
}

// HandleTyping fans a typing notification out to the session's current
// members. Not persisted, not deduplicated.
func (c *Coordinator) HandleTyping(ev TypingEvent) {
	frame := NewFrame(EventTyping, ev.SessionID, TypingPayload{Sender: ev.Sender})
	for _, member := range c.registry.Members(ev.SessionID) {
		if err := member.Send(frame); err != nil {
			log.Debug().
				Err(err).
				Str("session_id", ev.SessionID).
				Str("conn_id", member.ID()).
				Msg("typing delivery failed")
		}
	}
}
