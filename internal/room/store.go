package room

import "sync"

// Store holds the active rooms. It is owned by a Manager and safe for
// concurrent reads from request handlers.
type Store struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	byConn map[string]string // connID -> code
}

func NewStore() *Store {
	return &Store{
		rooms:  make(map[string]*Room),
		byConn: make(map[string]string),
	}
}

// Get returns a copy of the room with the given code.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// Put stores r and indexes its participants.
func (s *Store) Put(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.rooms[r.Code]; ok {
		for _, p := range old.Players {
			delete(s.byConn, p.ConnID)
		}
	}
	s.rooms[r.Code] = r.clone()
	for _, p := range r.Players {
		s.byConn[p.ConnID] = r.Code
	}
}

// Delete removes the room and its participant index.
func (s *Store) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[code]; ok {
		for _, p := range r.Players {
			delete(s.byConn, p.ConnID)
		}
		delete(s.rooms, code)
	}
}

// RoomOf returns the code of the room a connection sits in.
func (s *Store) RoomOf(connID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.byConn[connID]
	return code, ok
}

// Count returns the number of active rooms.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
