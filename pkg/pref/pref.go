// Package pref stores user preferences such as the current theme.
//
// A Pref is a typed value with a default that can be bound to a Store.
// Binding loads the stored value (resolving conflicts with the configured
// merge strategy) and every Set writes back through the store.
//
// Example:
//
//	store, err := pref.OpenBolt("yui.db")
//	theme := pref.New("theme", "light")
//	if err := theme.Bind(store); err != nil { ... }
//
//	current := theme.Get()
//	theme.Set("dark")
package pref

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"
)

// MergeStrategy determines how conflicts are resolved when local and stored values differ.
type MergeStrategy int

const (
	// StoreWins uses the stored value, discards local.
	StoreWins MergeStrategy = iota

	// LocalWins keeps the local value and writes it to the store.
	LocalWins

	// LWW uses last-write-wins with timestamps.
	LWW
)

// PrefOption is a functional option for configuring preferences.
type PrefOption func(*prefConfig)

type prefConfig struct {
	mergeStrategy MergeStrategy
	readOnly      bool
}

// MergeWith sets the merge strategy for conflict resolution.
func MergeWith(strategy MergeStrategy) PrefOption {
	return func(c *prefConfig) {
		c.mergeStrategy = strategy
	}
}

// ReadOnly loads the preference from the store but never writes it back.
func ReadOnly() PrefOption {
	return func(c *prefConfig) {
		c.readOnly = true
	}
}

// Pref is a typed user preference.
type Pref[T any] struct {
	key       string
	value     T
	defaults  T
	updatedAt time.Time
	config    prefConfig

	mu        sync.RWMutex
	store     Store
	listeners []func(T)
	logger    *slog.Logger
}

// New creates a new preference with the given key and default value.
func New[T any](key string, defaultValue T, opts ...PrefOption) *Pref[T] {
	config := prefConfig{mergeStrategy: StoreWins}
	for _, opt := range opts {
		opt(&config)
	}

	return &Pref[T]{
		key:      key,
		value:    defaultValue,
		defaults: defaultValue,
		config:   config,
		logger:   slog.Default().With("component", "pref", "key", key),
	}
}

// Bind attaches the preference to a store and loads the stored value.
// A missing key is not an error; the current value is kept. Unless the
// preference is read-only, a local value that wins the merge (or fills a
// missing key under LocalWins or LWW) is written back.
func (p *Pref[T]) Bind(store Store) error {
	p.mu.Lock()
	p.store = store
	p.mu.Unlock()

	entry, err := store.Get(p.key)
	if stderrors.Is(err, ErrNotFound) {
		if p.config.readOnly || p.config.mergeStrategy == StoreWins {
			return nil
		}
		return p.persist(p.Get(), p.UpdatedAt())
	}
	if err != nil {
		return err
	}
	var stored T
	if err := json.Unmarshal(entry.Value, &stored); err != nil {
		return err
	}
	if p.SetFromStore(stored, entry.UpdatedAt) || p.config.readOnly {
		return nil
	}
	return p.persist(p.Get(), p.UpdatedAt())
}

// Get returns the current preference value.
func (p *Pref[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set updates the value, writes it to the bound store and notifies
// listeners. A store failure is logged and returned; the in-memory value
// is updated either way.
func (p *Pref[T]) Set(value T) error {
	p.mu.Lock()
	p.value = value
	p.updatedAt = time.Now()
	updatedAt := p.updatedAt
	listeners := append([]func(T){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(value)
	}

	if p.config.readOnly {
		return nil
	}
	if err := p.persist(value, updatedAt); err != nil {
		p.logger.Error("failed to persist preference", "error", err)
		return err
	}
	return nil
}

func (p *Pref[T]) persist(value T, updatedAt time.Time) error {
	p.mu.RLock()
	store := p.store
	p.mu.RUnlock()
	if store == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Put(p.key, Entry{Value: data, UpdatedAt: updatedAt})
}

// Reset resets the preference to its default value.
func (p *Pref[T]) Reset() error {
	return p.Set(p.defaults)
}

// Key returns the preference key.
func (p *Pref[T]) Key() string {
	return p.key
}

// UpdatedAt returns when the preference was last updated.
func (p *Pref[T]) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}

// OnChange registers fn to run after every Set.
func (p *Pref[T]) OnChange(fn func(T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// SetFromStore merges a stored copy into the preference using the
// configured strategy. It reports whether the stored value was taken.
func (p *Pref[T]) SetFromStore(value T, storedAt time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.storeWins(storedAt) {
		return false
	}
	p.value = value
	p.updatedAt = storedAt
	return true
}

func (p *Pref[T]) storeWins(storedAt time.Time) bool {
	switch p.config.mergeStrategy {
	case LocalWins:
		return false
	case LWW:
		return storedAt.After(p.updatedAt)
	default:
		return true
	}
}

// MarshalJSON implements json.Marshaler.
func (p *Pref[T]) MarshalJSON() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return json.Marshal(struct {
		Key       string    `json:"key"`
		Value     T         `json:"value"`
		UpdatedAt time.Time `json:"updated_at"`
	}{
		Key:       p.key,
		Value:     p.value,
		UpdatedAt: p.updatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Pref[T]) UnmarshalJSON(data []byte) error {
	var temp struct {
		Key       string    `json:"key"`
		Value     T         `json:"value"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.key = temp.Key
	p.value = temp.Value
	p.updatedAt = temp.UpdatedAt
	p.logger = slog.Default().With("component", "pref", "key", temp.Key)
	return nil
}
