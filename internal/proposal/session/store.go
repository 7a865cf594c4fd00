package session

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dealdesk/internal/clock"
	"github.com/smallbiznis/dealdesk/internal/proposal/domain"
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store keeps sessions in memory. A session unused for longer than the idle
// TTL is gone, both on lookup and after Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*entry
	ttl      time.Duration
	clock    clock.Clock
}

func NewStore(clk clock.Clock, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[snowflake.ID]*entry),
		ttl:      ttl,
		clock:    clk,
	}
}

func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID()] = &entry{session: s, lastSeen: st.clock.Now()}
}

// Get returns the session and refreshes its idle timer. Sessions of other
// organizations are reported as missing.
func (st *Store) Get(orgID, id snowflake.ID) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok || e.session.OrgID() != orgID {
		return nil, domain.ErrDraftNotFound
	}
	now := st.clock.Now()
	if st.expired(e, now) {
		delete(st.sessions, id)
		return nil, domain.ErrDraftNotFound
	}
	e.lastSeen = now
	return e.session, nil
}

func (st *Store) Delete(orgID, id snowflake.ID) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok || e.session.OrgID() != orgID {
		return domain.ErrDraftNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Sweep drops idle sessions that are not saving and returns how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.clock.Now()
	removed := 0
	for id, e := range st.sessions {
		if st.expired(e, now) && !e.session.Saving() {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expired(e *entry, now time.Time) bool {
	return st.ttl > 0 && now.Sub(e.lastSeen) > st.ttl
}
