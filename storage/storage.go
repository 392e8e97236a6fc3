// Package storage defines a namespaced key/value store used by tools that
// keep state between calls. Stores are owned by the caller and passed to
// whatever needs them; there is no process-wide instance.
package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultNamespace is used when no namespace option is given.
const DefaultNamespace = "default"

// Storage is a namespaced key/value store with optional expiry.
type Storage interface {
	// Get returns the item stored under key. A missing or expired key yields
	// a nil Item and a nil error; errors are reserved for backend failures.
	Get(ctx context.Context, key string, opts ...Option) (*Item, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte, opts ...Option) error

	// Delete removes the key given by WithKey, or the whole namespace when no
	// key is given.
	Delete(ctx context.Context, opts ...Option) error

	// Keys lists the live keys of a namespace in ascending order.
	Keys(ctx context.Context, opts ...Option) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Item is a stored value with its metadata.
type Item struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// IsExpired reports whether the item's TTL has elapsed.
func (i *Item) IsExpired() bool {
	return i.ExpiresAt != nil && !time.Now().Before(*i.ExpiresAt)
}

// Option configures a storage operation.
type Option func(*Options)

// Options is the resolved form of a set of Option values.
type Options struct {
	Namespace string
	Key       *string
	TTL       *time.Duration
}

// Apply resolves opts, filling in the default namespace.
func Apply(opts ...Option) Options {
	o := Options{Namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	return o
}

// Expiry returns the absolute expiry for an item created at now.
func (o Options) Expiry(now time.Time) *time.Time {
	if o.TTL == nil || *o.TTL <= 0 {
		return nil
	}
	exp := now.Add(*o.TTL)
	return &exp
}

// WithNamespace scopes an operation to ns.
func WithNamespace(ns string) Option {
	return func(o *Options) { o.Namespace = ns }
}

// WithKey selects a single key for Delete.
func WithKey(key string) Option {
	return func(o *Options) { o.Key = &key }
}

// WithTTL expires the stored value after ttl. Non-positive values mean no
// expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) { o.TTL = &ttl }
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: closed")
