package kstor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/blujedis/kstor/internal/keypath"
	"github.com/blujedis/kstor/internal/persist"
	"github.com/blujedis/kstor/internal/query"
	"github.com/blujedis/kstor/internal/vault"
)

// ErrClosed is returned by every operation on a store after Close.
var ErrClosed = errors.New("kstor: store is closed")

// Entry is one key/value pair of the entrypoint-scoped document's top level.
type Entry struct {
	Key   string
	Value any
}

// Store is a file-backed JSON document store addressed by property paths.
// Construct with New; a zero Store is not usable.
type Store struct {
	emitter

	mu            sync.Mutex
	path          string
	file          *persist.File
	entry         keypath.Path
	encryptionKey string
	transform     Transform

	cache          map[string]any
	loaded         bool
	dirty          bool
	pendingWrite   bool
	loadedDefaults bool
	closed         bool
}

// New constructs a store, resolving the file path from the options and
// applying Defaults (when given) immediately.
func New(opts Options) (*Store, error) {
	path, err := resolvePath(opts.Name, opts.Dir, opts.AppName)
	if err != nil {
		return nil, err
	}

	s := &Store{
		path:          path,
		file:          persist.New(path),
		encryptionKey: opts.EncryptionKey,
		transform:     opts.Transform,
	}
	if opts.Entrypoint != "" {
		entry, err := keypath.Parse(opts.Entrypoint)
		if err != nil {
			return nil, err
		}
		s.entry = entry
	}

	if len(opts.Defaults) > 0 {
		if err := s.Defaults(opts.Defaults); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path returns the resolved store file path.
func (s *Store) Path() string { return s.path }

// Load returns the current document, reloading from disk when the cache is
// stale. A missing file yields an empty document after ensuring the target
// directory exists; an unreadable one yields an empty document with a slog
// diagnostic.
func (s *Store) Load() (map[string]any, error) {
	var events []eventRec
	defer func() { s.dispatch(events) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	doc, evs, err := s.loadLocked()
	events = evs
	return doc, err
}

// Persist serializes and writes the given document, replacing the cache.
func (s *Store) Persist(doc map[string]any) error {
	var events []eventRec
	defer func() { s.dispatch(events) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.pendingWrite = true
	evs, err := s.persistLocked(doc)
	events = evs
	return err
}

// Get returns the value at key, resolved through the entrypoint prefix.
// A missing path returns nil without error; use Has to distinguish a
// present-but-null value.
func (s *Store) Get(key string) (any, error) {
	v, _, err := s.lookup(key)
	return v, err
}

// Has reports whether key resolves to a value. Null counts as present.
func (s *Store) Has(key string) (bool, error) {
	_, ok, err := s.lookup(key)
	return ok, err
}

// Set assigns value at key and persists the document.
func (s *Store) Set(key string, value any) error {
	return s.setPairs([]Entry{{Key: key, Value: value}})
}

// SetAll applies several path-to-value assignments in key order and persists
// once after all of them.
func (s *Store) SetAll(values map[string]any) error {
	pairs := make([]Entry, 0, len(values))
	for _, k := range sortedKeys(values) {
		pairs = append(pairs, Entry{Key: k, Value: values[k]})
	}
	return s.setPairs(pairs)
}

// Delete removes the value at key, persists the document, and emits
// deleted(oldValue). Deleting an unresolved path still persists.
func (s *Store) Delete(key string) error {
	var events []eventRec
	defer func() { s.dispatch(events) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	doc, evs, err := s.loadLocked()
	events = evs
	if err != nil {
		return err
	}
	p, err := s.resolveKey(key)
	if err != nil {
		return err
	}

	old, _ := keypath.Get(doc, p)
	keypath.Delete(doc, p)

	s.pendingWrite = true
	pevs, err := s.persistLocked(doc)
	events = append(events, pevs...)
	if err != nil {
		return err
	}
	events = append(events, eventRec{EventDeleted, nil, old})
	return nil
}

// Clear writes an empty document and emits cleared.
func (s *Store) Clear() error {
	var events []eventRec
	defer func() { s.dispatch(events) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	empty := map[string]any{}
	s.pendingWrite = true
	evs, err := s.persistLocked(empty)
	events = evs
	if err != nil {
		return err
	}
	events = append(events, eventRec{EventCleared, empty, nil})
	return nil
}

// Defaults merges initial under the current document: existing on-disk
// top-level keys win over supplied defaults. The merged result is
// transformed and written back once. Defaults apply at most once per store
// instance; later calls are no-ops.
func (s *Store) Defaults(initial map[string]any) error {
	var events []eventRec
	defer func() { s.dispatch(events) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.loadedDefaults {
		return nil
	}

	doc, evs, err := s.loadLocked()
	events = evs
	if err != nil {
		return err
	}
	for _, k := range sortedKeys(initial) {
		if _, exists := doc[k]; !exists {
			doc[k] = initial[k]
		}
	}
	s.applyTransform(doc)

	s.pendingWrite = true
	pevs, err := s.persistLocked(doc)
	events = append(events, pevs...)
	if err != nil {
		return err
	}
	s.loadedDefaults = true
	return nil
}

// Snapshot returns a deep copy of the current document; later mutation of
// either side does not affect the other.
func (s *Store) Snapshot() (map[string]any, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// Iterate returns the entrypoint-scoped document's top-level key/value pairs
// in sorted key order. Each call re-reads current state.
func (s *Store) Iterate() ([]Entry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	scope := s.scoped(doc)
	entries := make([]Entry, 0, len(scope))
	for _, k := range sortedKeys(scope) {
		entries = append(entries, Entry{Key: k, Value: scope[k]})
	}
	return entries, nil
}

// Size returns the number of top-level keys in the entrypoint-scoped
// document.
func (s *Store) Size() (int, error) {
	entries, err := s.Iterate()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Query filters the entrypoint-scoped document's top-level rows through the
// given filter expression with skip/take bounds. A nil filter passes every
// row through.
func (s *Store) Query(filter map[string]any, skip, take int) (map[string]any, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	out, _, err := query.Filter(s.scoped(doc), filter, skip, take)
	return out, err
}

// Close flushes a pending write left behind by a failed persist and marks
// the store closed. Subsequent operations return ErrClosed.
func (s *Store) Close() error {
	var events []eventRec
	defer func() { s.dispatch(events) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.pendingWrite && s.cache != nil {
		evs, err := s.persistLocked(s.cache)
		events = evs
		return err
	}
	return nil
}

// lookup resolves key through the entrypoint and reads it from the current
// document.
func (s *Store) lookup(key string) (any, bool, error) {
	var events []eventRec
	defer func() { s.dispatch(events) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	doc, evs, err := s.loadLocked()
	events = evs
	if err != nil {
		return nil, false, err
	}
	p, err := s.resolveKey(key)
	if err != nil {
		return nil, false, err
	}
	v, ok := keypath.Get(doc, p)
	return v, ok, nil
}

// setPairs applies the assignments in order, emitting a per-key event (when
// a listener is registered under that exact name) plus a changed event per
// pair, then persists once.
func (s *Store) setPairs(pairs []Entry) error {
	var events []eventRec
	defer func() { s.dispatch(events) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	// Validate every path before mutating anything, so a bad key cannot
	// leave the cache holding a half-applied batch.
	paths := make([]keypath.Path, len(pairs))
	for i, pr := range pairs {
		p, err := s.resolveKey(pr.Key)
		if err != nil {
			return err
		}
		paths[i] = p
	}

	doc, evs, err := s.loadLocked()
	events = evs
	if err != nil {
		return err
	}

	for i, pr := range pairs {
		old, _ := keypath.Get(doc, paths[i])
		keypath.Set(doc, paths[i], pr.Value)
		if s.hasListener(pr.Key) {
			events = append(events, eventRec{pr.Key, pr.Value, old})
		}
		events = append(events, eventRec{EventChanged, pr.Value, old})
	}

	s.pendingWrite = true
	pevs, err := s.persistLocked(doc)
	events = append(events, pevs...)
	return err
}

// loadLocked implements the lazy reload: cache hit when loaded and clean,
// disk read otherwise. Must be called with s.mu held.
func (s *Store) loadLocked() (map[string]any, []eventRec, error) {
	if s.loaded && !s.dirty {
		return s.cache, nil, nil
	}
	old := s.cache

	data, err := s.file.Load()
	if errors.Is(err, persist.ErrNotFound) {
		if derr := s.file.EnsureDir(); derr != nil {
			return nil, nil, derr
		}
		doc := map[string]any{}
		s.cache, s.loaded, s.dirty = doc, true, false
		return doc, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	raw := data
	degraded := false
	if s.encryptionKey != "" {
		plaintext, derr := vault.Decrypt(string(data), s.encryptionKey)
		if derr != nil {
			slog.Warn("kstor: cannot decrypt store file, starting from an empty document",
				"path", s.path, "error", derr)
			degraded = true
		} else {
			raw = plaintext
		}
	}

	var doc map[string]any
	if !degraded {
		if jerr := json.Unmarshal(raw, &doc); jerr != nil {
			slog.Warn("kstor: cannot decode store file, starting from an empty document",
				"path", s.path, "error", jerr)
			degraded = true
		}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	var events []eventRec
	if !degraded {
		s.applyTransform(doc)
		events = append(events, eventRec{EventLoaded, doc, old})
	}
	s.cache, s.loaded, s.dirty = doc, true, false
	return doc, events, nil
}

// persistLocked serializes, optionally encrypts, and atomically writes doc,
// then replaces the cache and marks it dirty so the next read re-validates
// from disk. Must be called with s.mu held.
func (s *Store) persistLocked(doc map[string]any) ([]eventRec, error) {
	if err := s.file.EnsureDir(); err != nil {
		s.dirty = true
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		s.dirty = true
		return nil, err
	}
	if s.encryptionKey != "" {
		payload, eerr := vault.Encrypt(data, s.encryptionKey)
		if eerr != nil {
			s.dirty = true
			return nil, eerr
		}
		data = []byte(payload)
	}
	if err := s.file.Save(data); err != nil {
		s.dirty = true
		return nil, err
	}

	old := s.cache
	s.cache = doc
	s.loaded = true
	s.dirty = true
	s.pendingWrite = false
	return []eventRec{{EventPersisted, doc, old}}, nil
}

// resolveKey parses key and prefixes it with the entrypoint path.
func (s *Store) resolveKey(key string) (keypath.Path, error) {
	p, err := keypath.Parse(key)
	if err != nil {
		return nil, err
	}
	if len(s.entry) == 0 {
		return p, nil
	}
	return keypath.Join(s.entry, p), nil
}

// scoped returns the entrypoint subtree of doc, or doc itself without an
// entrypoint. A missing or non-object subtree scopes to an empty document.
func (s *Store) scoped(doc map[string]any) map[string]any {
	if len(s.entry) == 0 {
		return doc
	}
	v, ok := keypath.Get(doc, s.entry)
	if !ok {
		return map[string]any{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// applyTransform rewrites the scoped top-level fields in place.
func (s *Store) applyTransform(doc map[string]any) {
	if s.transform == nil {
		return
	}
	scope := s.scoped(doc)
	for _, k := range sortedKeys(scope) {
		scope[k] = s.transform(k, scope[k])
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
