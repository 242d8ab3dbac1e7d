package game

import (
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

// Registry owns every live session. A session exists from the first join to
// its room until the last player leaves.
//
// Lock order is registry then session; sessions never call back into the
// registry.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(cfg *Config) (*Registry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Registry{
		cfg:      *cfg,
		sessions: make(map[string]*Session),
	}, nil
}

// GetOrCreate adds the player to roomID, creating the session when the room
// is unknown. created reports whether a new session was made. A session is
// only registered once its creator is in it.
func (r *Registry) GetOrCreate(roomID, playerID, name string) (*Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[roomID]; ok {
		if err := s.AddPlayer(playerID, name); err != nil {
			return nil, false, err
		}
		return s, false, nil
	}

	s := newSession(roomID, r.cfg)
	if err := s.AddPlayer(playerID, name); err != nil {
		s.Close()
		return nil, false, err
	}
	r.sessions[roomID] = s
	zap.S().Infof("[GetOrCreate] room=%s created by %s, rooms=%d", roomID, playerID, len(r.sessions))

	return s, true, nil
}

func (r *Registry) Get(roomID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[roomID]
	return s, ok
}

// RemoveIfEmpty destroys the session for roomID when nobody is left in it.
// It reports whether the session was removed.
func (r *Registry) RemoveIfEmpty(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeIfEmptyLocked(roomID)
}

func (r *Registry) removeIfEmptyLocked(roomID string) bool {
	s, ok := r.sessions[roomID]
	if !ok || !s.IsEmpty() {
		return false
	}

	s.Close()
	delete(r.sessions, roomID)
	zap.S().Infof("[RemoveIfEmpty] room=%s destroyed, rooms=%d", roomID, len(r.sessions))
	return true
}

// Leave removes the player and, if they were the last one, the session,
// in one step.
func (r *Registry) Leave(roomID, playerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[roomID]
	if !ok {
		return 0, ErrRoomNotFound
	}

	remaining, err := s.RemovePlayer(playerID)
	r.removeIfEmptyLocked(roomID)
	return remaining, err
}

// Dispatch runs fn against the room's session. A panic inside fn is logged
// and reported as ErrInternal; it never reaches other rooms.
func (r *Registry) Dispatch(roomID string, fn func(*Session) error) (err error) {
	s, ok := r.Get(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Errorf("[Dispatch] room=%s recovered panic: %v\n%s", roomID, rec, debug.Stack())
			err = fmt.Errorf("%w: %v", ErrInternal, rec)
		}
	}()

	return fn(s)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// JoinableRoom returns the ID of a room sitting in the lobby with a free
// seat, or "" when there is none. The lowest ID wins so results are stable.
func (r *Registry) JoinableRoom() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if r.sessions[id].Joinable() {
			return id
		}
	}
	return ""
}

// Close shuts every session down. Used on server shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		s.Close()
		delete(r.sessions, id)
	}
}
