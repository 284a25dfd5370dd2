// Package memory provides an embedded, dependency-free document store with
// full-snapshot subscriptions. It is the development and test backend; its
// delivery semantics match the hosted store: every mutation redelivers the
// complete document set of the touched collection, in insertion order.
package memory

import (
	"sync"

	"github.com/lborres/tipon/core"
	"github.com/lborres/tipon/pkg/crypto"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	order       map[string][]string
	subs        map[string]map[int]*subscription
	nextSub     int
	nanoid      *crypto.NanoIDGenerator
}

type subscription struct {
	onSnapshot core.SnapshotFunc
	cancelled  bool
}

var _ core.DocumentStore = (*Store)(nil)

func NewStore() *Store {
	nanoid, _ := crypto.NewNanoID()
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
		subs:        make(map[string]map[int]*subscription),
		nanoid:      nanoid,
	}
}

func (s *Store) snapshotLocked(path string) []core.Document {
	docs := make([]core.Document, 0, len(s.order[path]))
	for _, id := range s.order[path] {
		data := s.collections[path][id]
		copied := make(map[string]any, len(data))
		for k, v := range data {
			copied[k] = v
		}
		docs = append(docs, core.Document{ID: id, Data: copied})
	}
	return docs
}

// notify delivers the collection's current snapshot to every live
// subscriber, outside the store lock so a callback may re-enter the store.
func (s *Store) notify(path string) {
	s.mu.Lock()
	docs := s.snapshotLocked(path)
	targets := make([]core.SnapshotFunc, 0, len(s.subs[path]))
	for _, sub := range s.subs[path] {
		if !sub.cancelled {
			targets = append(targets, sub.onSnapshot)
		}
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(docs)
	}
}

func (s *Store) GetCollection(path string) ([]core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(path), nil
}

func (s *Store) SubscribeCollection(path string, onSnapshot core.SnapshotFunc, onError core.SubscriptionErrorFunc) (core.Unsubscribe, error) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	sub := &subscription{onSnapshot: onSnapshot}
	if s.subs[path] == nil {
		s.subs[path] = make(map[int]*subscription)
	}
	s.subs[path][id] = sub
	docs := s.snapshotLocked(path)
	s.mu.Unlock()

	// Initial snapshot before returning, matching hosted-store behavior
	onSnapshot(docs)

	return func() {
		s.mu.Lock()
		if live, ok := s.subs[path][id]; ok {
			live.cancelled = true
			delete(s.subs[path], id)
		}
		s.mu.Unlock()
	}, nil
}

func (s *Store) CreateDocument(path string, data map[string]any) (string, error) {
	id, err := s.nanoid.Generate()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.setLocked(path, id, data)
	s.mu.Unlock()

	s.notify(path)
	return id, nil
}

func (s *Store) SetDocument(path, id string, data map[string]any) error {
	s.mu.Lock()
	s.setLocked(path, id, data)
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *Store) setLocked(path, id string, data map[string]any) {
	if s.collections[path] == nil {
		s.collections[path] = make(map[string]map[string]any)
	}
	if _, exists := s.collections[path][id]; !exists {
		s.order[path] = append(s.order[path], id)
	}
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	s.collections[path][id] = copied
}

func (s *Store) UpdateDocument(path, id string, data map[string]any) error {
	s.mu.Lock()
	doc, exists := s.collections[path][id]
	if !exists {
		s.mu.Unlock()
		return core.ErrDocumentNotFound
	}
	for k, v := range data {
		doc[k] = v
	}
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *Store) DeleteDocument(path, id string) error {
	s.mu.Lock()
	if _, exists := s.collections[path][id]; !exists {
		// Absent documents delete successfully
		s.mu.Unlock()
		return nil
	}
	delete(s.collections[path], id)
	kept := s.order[path][:0]
	for _, existing := range s.order[path] {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	s.order[path] = kept
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *Store) GetDocument(path, id string) (*core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, exists := s.collections[path][id]
	if !exists {
		return nil, core.ErrDocumentNotFound
	}
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return &core.Document{ID: id, Data: copied}, nil
}
