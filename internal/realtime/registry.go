package realtime

import "sync"

// Conn is the opaque handle the registry keeps for a live connection. The
// gateway owns the transport; the registry only needs identity, session
// membership, and a way to deliver frames.
type Conn interface {
	ID() string
	SessionID() string
	Role() string
	Send(frame Frame) error
}

// Registry maps session ids to their live member connections and the
// per-session "already answered" flag. The top-level mutex guards only the
// session map; each entry has its own lock, so unrelated sessions never
// serialize against each other.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu       sync.Mutex
	members  map[string]Conn
	answered bool
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*sessionEntry)}
}

func (r *Registry) lookup(sessionID string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sessionID]
	return entry, ok
}

func (r *Registry) entry(sessionID string) *sessionEntry {
	if entry, ok := r.lookup(sessionID); ok {
		return entry
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{}
		r.sessions[sessionID] = entry
	}
	return entry
}

// Attach adds a connection to its session's member set.
func (r *Registry) Attach(c Conn) {
	entry := r.entry(c.SessionID())

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.members == nil {
		entry.members = make(map[string]Conn)
	}
	entry.members[c.ID()] = c
}

// Detach removes exactly the given connection from its session. When the
// member set empties it is dropped; the answered flag is kept for the
// process lifetime so a reattaching visitor gets no second automated reply.
func (r *Registry) Detach(c Conn) {
	entry, ok := r.lookup(c.SessionID())
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	delete(entry.members, c.ID())
	if len(entry.members) == 0 {
		entry.members = nil
	}
}

// Members returns a snapshot of the session's attached connections.
func (r *Registry) Members(sessionID string) []Conn {
	entry, ok := r.lookup(sessionID)
	if !ok {
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	members := make([]Conn, 0, len(entry.members))
	for _, c := range entry.members {
		members = append(members, c)
	}
	return members
}

// HasAnswered reports whether an automated reply was already produced for
// the session.
func (r *Registry) HasAnswered(sessionID string) bool {
	entry, ok := r.lookup(sessionID)
	if !ok {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.answered
}

// MarkAnswered sets the session's dedup flag. One-way; never cleared.
func (r *Registry) MarkAnswered(sessionID string) {
	entry := r.entry(sessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.answered = true
}
