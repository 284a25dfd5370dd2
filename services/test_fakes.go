package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lborres/tipon/core"
)

// FakeDocumentStore is a test-only fake implementing core.DocumentStore.
// Writes apply to in-memory maps and deliver full snapshots synchronously to
// subscribers, so tests observe deterministic notification ordering. Error
// fields allow behavior injection.
type FakeDocumentStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	order       map[string][]string
	subs        map[string][]*fakeSubscription
	nextID      int

	createErr    error
	getErr       error
	updateErr    error
	deleteErr    error
	subscribeErr error
}

type fakeSubscription struct {
	onSnapshot core.SnapshotFunc
	onError    core.SubscriptionErrorFunc
	cancelled  bool
}

func NewFakeDocumentStore() *FakeDocumentStore {
	return &FakeDocumentStore{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
		subs:        make(map[string][]*fakeSubscription),
	}
}

func (f *FakeDocumentStore) snapshotLocked(path string) []core.Document {
	docs := make([]core.Document, 0, len(f.order[path]))
	for _, id := range f.order[path] {
		data := f.collections[path][id]
		copied := make(map[string]any, len(data))
		for k, v := range data {
			copied[k] = v
		}
		docs = append(docs, core.Document{ID: id, Data: copied})
	}
	return docs
}

func (f *FakeDocumentStore) notify(path string) {
	f.mu.Lock()
	docs := f.snapshotLocked(path)
	var targets []core.SnapshotFunc
	for _, sub := range f.subs[path] {
		if !sub.cancelled {
			targets = append(targets, sub.onSnapshot)
		}
	}
	f.mu.Unlock()

	for _, fn := range targets {
		fn(docs)
	}
}

func (f *FakeDocumentStore) GetCollection(path string) ([]core.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.snapshotLocked(path), nil
}

func (f *FakeDocumentStore) SubscribeCollection(path string, onSnapshot core.SnapshotFunc, onError core.SubscriptionErrorFunc) (core.Unsubscribe, error) {
	f.mu.Lock()
	if f.subscribeErr != nil {
		f.mu.Unlock()
		return nil, f.subscribeErr
	}
	sub := &fakeSubscription{onSnapshot: onSnapshot, onError: onError}
	f.subs[path] = append(f.subs[path], sub)
	docs := f.snapshotLocked(path)
	f.mu.Unlock()

	// Initial snapshot before returning
	onSnapshot(docs)

	return func() {
		f.mu.Lock()
		sub.cancelled = true
		f.mu.Unlock()
	}, nil
}

func (f *FakeDocumentStore) CreateDocument(path string, data map[string]any) (string, error) {
	f.mu.Lock()
	if f.createErr != nil {
		f.mu.Unlock()
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.setLocked(path, id, data)
	f.mu.Unlock()

	f.notify(path)
	return id, nil
}

func (f *FakeDocumentStore) SetDocument(path, id string, data map[string]any) error {
	f.mu.Lock()
	if f.createErr != nil {
		f.mu.Unlock()
		return f.createErr
	}
	f.setLocked(path, id, data)
	f.mu.Unlock()

	f.notify(path)
	return nil
}

func (f *FakeDocumentStore) setLocked(path, id string, data map[string]any) {
	if f.collections[path] == nil {
		f.collections[path] = make(map[string]map[string]any)
	}
	if _, exists := f.collections[path][id]; !exists {
		f.order[path] = append(f.order[path], id)
	}
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	f.collections[path][id] = copied
}

func (f *FakeDocumentStore) UpdateDocument(path, id string, data map[string]any) error {
	f.mu.Lock()
	if f.updateErr != nil {
		f.mu.Unlock()
		return f.updateErr
	}
	doc, exists := f.collections[path][id]
	if !exists {
		f.mu.Unlock()
		return core.ErrDocumentNotFound
	}
	for k, v := range data {
		doc[k] = v
	}
	f.mu.Unlock()

	f.notify(path)
	return nil
}

func (f *FakeDocumentStore) DeleteDocument(path, id string) error {
	f.mu.Lock()
	if f.deleteErr != nil {
		f.mu.Unlock()
		return f.deleteErr
	}
	if _, exists := f.collections[path][id]; !exists {
		f.mu.Unlock()
		return nil
	}
	delete(f.collections[path], id)
	kept := f.order[path][:0]
	for _, existing := range f.order[path] {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	f.order[path] = kept
	f.mu.Unlock()

	f.notify(path)
	return nil
}

func (f *FakeDocumentStore) GetDocument(path, id string) (*core.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, exists := f.collections[path][id]
	if !exists {
		return nil, core.ErrDocumentNotFound
	}
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return &core.Document{ID: id, Data: copied}, nil
}

// EmitSnapshot redelivers the current snapshot of a collection to all live
// subscribers, simulating a spontaneous backend notification.
func (f *FakeDocumentStore) EmitSnapshot(path string) {
	f.notify(path)
}

// EmitError delivers a terminal subscription error to every live subscriber
// of a collection.
func (f *FakeDocumentStore) EmitError(path string, err error) {
	f.mu.Lock()
	var targets []core.SubscriptionErrorFunc
	for _, sub := range f.subs[path] {
		if !sub.cancelled {
			targets = append(targets, sub.onError)
		}
	}
	f.mu.Unlock()

	for _, fn := range targets {
		fn(err)
	}
}

// SubscriberCount reports live (uncancelled) subscriptions on a collection.
func (f *FakeDocumentStore) SubscriberCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, sub := range f.subs[path] {
		if !sub.cancelled {
			count++
		}
	}
	return count
}

// FakeIdentity is a test-only fake implementing core.IdentityProvider. Tests
// drive session transitions directly through EmitSessionChange.
type FakeIdentity struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]core.SessionChangeFunc
}

func NewFakeIdentity() *FakeIdentity {
	return &FakeIdentity{listeners: make(map[int]core.SessionChangeFunc)}
}

func (f *FakeIdentity) SignUp(input core.SignUpInput, ip, ua string) (*core.SignUpResult, error) {
	return nil, core.ErrNotImplemented
}

func (f *FakeIdentity) SignIn(input core.SignInInput, ip, ua string) (*core.SignInResult, error) {
	return nil, core.ErrNotImplemented
}

func (f *FakeIdentity) SignOut(token string) error { return nil }

func (f *FakeIdentity) GetSession(token string) (*core.SessionData, error) {
	return nil, core.ErrNotImplemented
}

func (f *FakeIdentity) OnSessionChange(fn core.SessionChangeFunc) core.Unsubscribe {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *FakeIdentity) EmitSessionChange(userID string) {
	f.mu.Lock()
	fns := make([]core.SessionChangeFunc, 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(userID)
	}
}

// FakeSessionStorage is a test-only fake implementing core.SessionStorage.
// It stores sessions in a map and exposes error fields for behavior injection.
type FakeSessionStorage struct {
	sessions  map[string]*core.Session
	mu        sync.RWMutex
	createErr error
	getErr    error
	deleteErr error
}

func NewFakeSessionStorage() *FakeSessionStorage {
	return &FakeSessionStorage{
		sessions: make(map[string]*core.Session),
	}
}

func (f *FakeSessionStorage) CreateSession(s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}

	f.sessions[s.TokenHash] = s
	return nil
}

func (f *FakeSessionStorage) GetSessionByHash(tokenHash string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return s, nil
}

func (f *FakeSessionStorage) GetSessionByID(id string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, core.ErrSessionNotFound
}

func (f *FakeSessionStorage) GetUserSessions(userID string) ([]*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var sessions []*core.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (f *FakeSessionStorage) UpdateSession(s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[s.TokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	f.sessions[s.TokenHash] = s
	return nil
}

func (f *FakeSessionStorage) DeleteSessionByHash(tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(f.sessions, tokenHash)
	return nil
}

func (f *FakeSessionStorage) DeleteSessionByID(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for k, s := range f.sessions {
		if s.ID == id {
			delete(f.sessions, k)
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (f *FakeSessionStorage) DeleteUserSessions(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for k, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, k)
			count++
		}
	}
	return count, nil
}

func (f *FakeSessionStorage) DeleteExpiredSessions() (int, error) {
	panic("not implemented")
}

// FakeStorageProvider is a test-only fake implementing core.AuthStorage.
// It combines session, user, and account storage fakes.
type FakeStorageProvider struct {
	*FakeSessionStorage
	users    map[string]*core.User
	accounts map[string]*core.Account
	nextID   int
}

func NewFakeStorageProvider() *FakeStorageProvider {
	return &FakeStorageProvider{
		FakeSessionStorage: NewFakeSessionStorage(),
		users:              make(map[string]*core.User),
		accounts:           make(map[string]*core.Account),
	}
}

// UserStorage implementation
func (f *FakeStorageProvider) CreateUser(u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		f.nextID++
		u.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	if _, exists := f.users[u.ID]; exists {
		return core.ErrUserExists
	}
	f.users[u.ID] = u
	return nil
}

func (f *FakeStorageProvider) GetUserByID(id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorageProvider) GetUserByEmail(email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorageProvider) UpdateUser(u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[u.ID]; !exists {
		return core.ErrUserNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *FakeStorageProvider) DeleteUser(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[id]; !exists {
		return core.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

// AccountStorage implementation
func (f *FakeStorageProvider) CreateAccount(a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		f.nextID++
		a.ID = fmt.Sprintf("account-%d", f.nextID)
	}
	f.accounts[a.ID] = a
	return nil
}

func (f *FakeStorageProvider) GetAccountByID(id string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, errors.New("account not found")
}

func (f *FakeStorageProvider) GetAccountByUserAndProvider(userID, providerID string) ([]*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var accounts []*core.Account
	for _, a := range f.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (f *FakeStorageProvider) UpdateAccount(a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[a.ID]; !exists {
		return errors.New("account not found")
	}
	f.accounts[a.ID] = a
	return nil
}

func (f *FakeStorageProvider) DeleteAccount(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[id]; !exists {
		return errors.New("account not found")
	}
	delete(f.accounts, id)
	return nil
}

// FakeCache is a test-only fake implementing core.Cache.
// It stores sessions in a map and exposes error fields for behavior injection.
type FakeCache struct {
	cache  map[string]*core.Session
	mu     sync.RWMutex
	getErr error
	setErr error
	delErr error
	hits   int
	misses int
}

func NewFakeCache() *FakeCache {
	return &FakeCache{
		cache: make(map[string]*core.Session),
	}
}

func (f *FakeCache) Get(tokenHash string) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}

	s, ok := f.cache[tokenHash]
	if !ok {
		f.misses++
		return nil, core.ErrCacheNotFound
	}

	f.hits++
	return s, nil
}

func (f *FakeCache) Set(tokenHash string, session *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}

	f.cache[tokenHash] = session
	return nil
}

func (f *FakeCache) Delete(tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.delErr != nil {
		return f.delErr
	}

	delete(f.cache, tokenHash)
	return nil
}

func (f *FakeCache) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]*core.Session)
	return nil
}

func (f *FakeCache) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}
