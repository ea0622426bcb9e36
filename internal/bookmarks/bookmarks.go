package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"safewalk-client/internal/geo"
	"safewalk-client/internal/storage"
)

// storageKey is the single namespaced entry holding the serialized
// collection.
const storageKey = "safewalk:bookmarks"

// maxBookmarks caps the collection; the oldest entries are evicted
// silently on overflow.
const maxBookmarks = 20

// Bookmark is a named origin/destination pair, owned entirely by the
// client.
type Bookmark struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Start geo.Point `json:"start"`
	End   geo.Point `json:"end"`
}

// Store keeps bookmarks most-recent-first and mirrors every change to
// durable local storage. When storage is unavailable it degrades to
// memory-only for the session instead of failing the caller.
type Store struct {
	mu    sync.Mutex
	store storage.Store
	items []Bookmark
	seq   uint64
}

// NewStore loads the persisted collection. An absent entry or a parse
// failure initializes an empty collection without surfacing an error.
func NewStore(st storage.Store) *Store {
	s := &Store{store: st}

	data, err := st.Load(storageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("bookmarks: load failed, starting empty: %v", err)
		}
		return s
	}
	var items []Bookmark
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("bookmarks: corrupt store, starting empty: %v", err)
		return s
	}
	if len(items) > maxBookmarks {
		items = items[:maxBookmarks]
	}
	s.items = items
	return s
}

// Add prepends a new bookmark and persists the collection. A name that
// trims to empty is a silent no-op and returns nil.
func (s *Store) Add(name string, start, end geo.Point) (*Bookmark, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	bm := Bookmark{
		ID:    fmt.Sprintf("bm-%d-%d", time.Now().UnixNano(), s.seq),
		Name:  name,
		Start: start,
		End:   end,
	}
	s.items = append([]Bookmark{bm}, s.items...)
	if len(s.items) > maxBookmarks {
		s.items = s.items[:maxBookmarks]
	}
	s.persistLocked()
	return &bm, nil
}

// Remove deletes by id and re-persists. It reports whether anything was
// removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, bm := range s.items {
		if bm.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// Use resolves a bookmark into its point pair for the caller to feed into
// the selection. The stored collection is untouched.
func (s *Store) Use(id string) (start, end geo.Point, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bm := range s.items {
		if bm.ID == id {
			return bm.Start, bm.End, true
		}
	}
	return geo.Point{}, geo.Point{}, false
}

// List returns a copy, most recent first.
func (s *Store) List() []Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Bookmark, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) persistLocked() {
	data, err := json.Marshal(s.items)
	if err != nil {
		log.Printf("bookmarks: encode failed: %v", err)
		return
	}
	if err := s.store.Save(storageKey, data); err != nil {
		// degrade to memory-only for this session
		log.Printf("bookmarks: persist failed: %v", err)
	}
}
