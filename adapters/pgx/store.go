package pgx

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/lborres/tipon/core"
)

// notifyChannel carries change envelopes for the documents table.
const notifyChannel = "tipon_documents"

// changeEnvelope is the NOTIFY payload. The id exists to make individual
// notifications traceable in logs; dispatch only needs the collection.
type changeEnvelope struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
}

// Store implements core.DocumentStore on Postgres. Every subscriber of a
// collection receives the full, position-ordered document set after each
// change, never a diff.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	mu       sync.Mutex
	subs     map[string]map[int]*subscription
	nextSub  int
	listenOn sync.Once
	cancel   context.CancelFunc
}

type subscription struct {
	onSnapshot core.SnapshotFunc
	onError    core.SubscriptionErrorFunc
	cancelled  bool
}

var _ core.DocumentStore = (*Store)(nil)

func (s *Store) GetCollection(path string) ([]core.Document, error) {
	ctx := context.Background()
	rows, err := s.pool.Query(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY position`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var doc core.Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) SubscribeCollection(path string, onSnapshot core.SnapshotFunc, onError core.SubscriptionErrorFunc) (core.Unsubscribe, error) {
	s.listenOn.Do(s.startListener)

	docs, err := s.GetCollection(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	sub := &subscription{onSnapshot: onSnapshot, onError: onError}
	if s.subs[path] == nil {
		s.subs[path] = make(map[int]*subscription)
	}
	s.subs[path][id] = sub
	s.mu.Unlock()

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

// startListener holds one dedicated connection on LISTEN and fans incoming
// envelopes out to collection subscribers for the lifetime of the store.
func (s *Store) startListener() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go func() {
		conn, err := s.pool.Acquire(ctx)
		if err != nil {
			s.failAll(err)
			return
		}
		defer conn.Release()

		if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
			s.failAll(err)
			return
		}

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.failAll(err)
				return
			}

			var env changeEnvelope
			if err := json.Unmarshal([]byte(notification.Payload), &env); err != nil {
				s.log.Warn().Err(err).Str("payload", notification.Payload).Msg("unparseable change notification")
				continue
			}
			s.dispatch(env)
		}
	}()
}

// dispatch requeries the changed collection and delivers the snapshot.
func (s *Store) dispatch(env changeEnvelope) {
	s.mu.Lock()
	targets := make([]*subscription, 0, len(s.subs[env.Collection]))
	for _, sub := range s.subs[env.Collection] {
		if !sub.cancelled {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	docs, err := s.GetCollection(env.Collection)
	if err != nil {
		s.log.Error().Err(err).Str("collection", env.Collection).Str("changeId", env.ID).Msg("snapshot requery failed")
		for _, sub := range targets {
			if sub.onError != nil {
				sub.onError(err)
			}
		}
		return
	}

	for _, sub := range targets {
		sub.onSnapshot(docs)
	}
}

// failAll terminates every live subscription after a listener failure.
func (s *Store) failAll(err error) {
	s.log.Error().Err(err).Msg("document listener terminated")

	s.mu.Lock()
	var targets []core.SubscriptionErrorFunc
	for _, subs := range s.subs {
		for _, sub := range subs {
			if !sub.cancelled && sub.onError != nil {
				targets = append(targets, sub.onError)
			}
			sub.cancelled = true
		}
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(err)
	}
}

func (s *Store) notify(ctx context.Context, path string) {
	env := changeEnvelope{ID: uuid.New().String(), Collection: path}
	payload, err := json.Marshal(env)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal change envelope")
		return
	}
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(payload)); err != nil {
		s.log.Error().Err(err).Str("collection", path).Msg("failed to publish change notification")
	}
}

func (s *Store) CreateDocument(path string, data map[string]any) (string, error) {
	ctx := context.Background()
	id := uuid.New().String()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`, path, id, data)
	if err != nil {
		return "", err
	}

	s.notify(ctx, path)
	return id, nil
}

func (s *Store) SetDocument(path, id string, data map[string]any) error {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`, path, id, data)
	if err != nil {
		return err
	}

	s.notify(ctx, path)
	return nil
}

func (s *Store) UpdateDocument(path, id string, data map[string]any) error {
	ctx := context.Background()
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3 WHERE collection = $1 AND id = $2`, path, id, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrDocumentNotFound
	}

	s.notify(ctx, path)
	return nil
}

func (s *Store) DeleteDocument(path, id string) error {
	ctx := context.Background()
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, path, id)
	if err != nil {
		return err
	}

	// Deleting an absent document succeeds and notifies nobody
	if tag.RowsAffected() > 0 {
		s.notify(ctx, path)
	}
	return nil
}

func (s *Store) GetDocument(path, id string) (*core.Document, error) {
	ctx := context.Background()
	doc := &core.Document{ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`, path, id).Scan(&doc.Data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Close stops the notification listener. Live subscriptions are not
// individually cancelled; owners cancel through their Unsubscribe.
func (s *Store) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
