package core

// Document is a single record in a backend collection.
type Document struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// Unsubscribe cancels a subscription. Safe to call more than once; after the
// first call no further snapshots may be delivered for that subscription.
type Unsubscribe func()

// SnapshotFunc receives the complete current document set of a collection.
// Backends deliver full snapshots, not diffs, in collection order.
type SnapshotFunc func(docs []Document)

// SubscriptionErrorFunc receives a terminal subscription error. After it is
// called the subscription is dead and delivers nothing further.
type SubscriptionErrorFunc func(err error)

// DocumentStore is the document-database boundary. It mirrors the surface the
// synchronization core needs from a hosted document store: snapshot
// subscriptions on collections plus plain CRUD on documents.
type DocumentStore interface {
	// GetCollection returns the current document set of a collection.
	GetCollection(path string) ([]Document, error)

	// SubscribeCollection registers a live subscription. The initial
	// snapshot is delivered before SubscribeCollection returns, then one
	// snapshot per change until the returned Unsubscribe runs.
	SubscribeCollection(path string, onSnapshot SnapshotFunc, onError SubscriptionErrorFunc) (Unsubscribe, error)

	// CreateDocument stores data under a fresh backend-assigned id and
	// returns that id.
	CreateDocument(path string, data map[string]any) (string, error)

	// SetDocument stores data under a caller-chosen id, creating or
	// replacing the document.
	SetDocument(path, id string, data map[string]any) error

	// UpdateDocument merges data into an existing document. Returns
	// ErrDocumentNotFound if the document does not exist.
	UpdateDocument(path, id string, data map[string]any) error

	// DeleteDocument removes a document. Deleting an absent document is
	// not an error.
	DeleteDocument(path, id string) error

	// GetDocument returns a single document or ErrDocumentNotFound.
	GetDocument(path, id string) (*Document, error)
}
