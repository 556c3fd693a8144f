package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
)

const DefaultNamespace = "aipomodoro"

// Options configure a Store. A nil Transform means Identity.
type Options struct {
	Namespace string
	Transform Transform
	Logger    *logging.Logger
}

// Store is the namespaced, JSON-valued key store. Reads and writes go
// through an in-memory cache of plaintext JSON, so values written while the
// medium rejects writes remain visible for the rest of the process.
type Store struct {
	medium    Medium
	namespace string
	transform Transform
	shared    *sharedState
	logger    *logging.Logger
}

type sharedState struct {
	mu                sync.Mutex
	cache             map[string][]byte
	unavailableLogged bool
}

// Footprint is the storage use of every entry under the namespace.
type Footprint struct {
	EntryCount int   `json:"entryCount"`
	TotalBytes int64 `json:"totalBytes"`
}

func NewStore(medium Medium, opts Options) (*Store, error) {
	if medium == nil {
		return nil, errors.New("storage: nil medium")
	}
	ns := strings.TrimSpace(opts.Namespace)
	if ns == "" {
		ns = DefaultNamespace
	}
	transform := opts.Transform
	if transform == nil {
		transform = Identity{}
	}
	return &Store{
		medium:    medium,
		namespace: ns,
		transform: transform,
		shared:    &sharedState{cache: make(map[string][]byte)},
		logger:    opts.Logger.WithComponent("store"),
	}, nil
}

func (s *Store) Namespace() string { return s.namespace }

func (s *Store) Transform() Transform { return s.transform }

// WithTransform returns a view of the store that encodes and decodes with t.
// The view shares the medium and cache with s.
func (s *Store) WithTransform(t Transform) *Store {
	if t == nil {
		t = Identity{}
	}
	view := *s
	view.transform = t
	return &view
}

func (s *Store) fullKey(key string) string {
	return s.namespace + "_" + key
}

// LoadRaw returns the plaintext JSON stored under key. found is false when
// nothing is stored; that is not an error.
func (s *Store) LoadRaw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	full := s.fullKey(key)

	s.shared.mu.Lock()
	cached, ok := s.shared.cache[full]
	s.shared.mu.Unlock()
	if ok {
		return append(json.RawMessage(nil), cached...), true, nil
	}

	stored, err := s.medium.Get(ctx, full)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		s.reportUnavailable("get", key, err)
		return nil, false, &UnavailableError{Op: "get", Key: key, Err: err}
	}

	plain, err := s.transform.Decode(stored)
	if err != nil {
		return nil, false, &DecodeError{Key: key, Err: err}
	}
	plain = bytes.TrimSpace(plain)
	if !json.Valid(plain) {
		return nil, false, &DecodeError{Key: key, Err: errors.New("stored value is not valid JSON")}
	}

	s.shared.mu.Lock()
	s.shared.cache[full] = append([]byte(nil), plain...)
	s.shared.mu.Unlock()
	return json.RawMessage(plain), true, nil
}

// Load decodes the value under key into out.
func (s *Store) Load(ctx context.Context, key string, out any) (bool, error) {
	raw, found, err := s.LoadRaw(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, &DecodeError{Key: key, Err: err}
	}
	return true, nil
}

// GetOr returns the value under key, or def when it is absent or unreadable.
// The error is non-nil only in the unreadable case.
func GetOr[T any](ctx context.Context, s *Store, key string, def T) (T, error) {
	var out T
	found, err := s.Load(ctx, key, &out)
	if err != nil || !found {
		return def, err
	}
	return out, nil
}

// Save stores v as JSON under key.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: marshal %q: %w", key, err)
	}
	return s.SaveRaw(ctx, key, raw)
}

// SaveRaw stores already-encoded JSON. The cache is updated before the
// medium write; a rejected write leaves the cached value in place and returns
// an *UnavailableError.
func (s *Store) SaveRaw(ctx context.Context, key string, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("storage: value for %q is not valid JSON", key)
	}
	full := s.fullKey(key)

	s.shared.mu.Lock()
	s.shared.cache[full] = append([]byte(nil), raw...)
	s.shared.mu.Unlock()

	stored, err := s.transform.Encode(raw)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	if err := s.medium.Put(ctx, full, stored); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			s.logger.Warn("write rejected", "key", key, "bytes", len(stored), "error", err)
		} else {
			s.reportUnavailable("put", key, err)
		}
		return &UnavailableError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	full := s.fullKey(key)

	s.shared.mu.Lock()
	delete(s.shared.cache, full)
	s.shared.mu.Unlock()

	if err := s.medium.Delete(ctx, full); err != nil && !errors.Is(err, ErrNotFound) {
		s.reportUnavailable("delete", key, err)
		return &UnavailableError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Keys lists the unprefixed keys persisted under the namespace.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	prefix := s.namespace + "_"
	full, err := s.medium.Keys(ctx, prefix)
	if err != nil {
		s.reportUnavailable("keys", "", err)
		return nil, &UnavailableError{Op: "keys", Err: err}
	}
	out := make([]string, 0, len(full))
	for _, k := range full {
		out = append(out, strings.TrimPrefix(k, prefix))
	}
	return out, nil
}

// Footprint sums key and stored value lengths over the namespace.
func (s *Store) Footprint(ctx context.Context) (Footprint, error) {
	prefix := s.namespace + "_"
	keys, err := s.medium.Keys(ctx, prefix)
	if err != nil {
		return Footprint{}, &UnavailableError{Op: "keys", Err: err}
	}
	var fp Footprint
	for _, k := range keys {
		value, getErr := s.medium.Get(ctx, k)
		if getErr != nil {
			if errors.Is(getErr, ErrNotFound) {
				continue
			}
			return Footprint{}, &UnavailableError{Op: "get", Key: strings.TrimPrefix(k, prefix), Err: getErr}
		}
		fp.EntryCount++
		fp.TotalBytes += entrySize(k, value)
	}
	return fp, nil
}

func (s *Store) reportUnavailable(op, key string, err error) {
	s.shared.mu.Lock()
	first := !s.shared.unavailableLogged
	s.shared.unavailableLogged = true
	s.shared.mu.Unlock()
	if first {
		s.logger.Error("storage medium unavailable", "op", op, "key", key, "error", err)
		return
	}
	s.logger.Debug("storage medium unavailable", "op", op, "key", key, "error", err)
}
