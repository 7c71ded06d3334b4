// Package kvstore provides the persistent key-value store in which every collection is kept as
// one JSON document under a fixed key.
//
// Memory keeps values in process memory. SQL keeps them in a single table on MySQL or SQLite.
// Instrumented wraps any Store and records operation metrics.
package kvstore

import (
	"context"
	"errors"
)

// Keys under which the collections are stored.
const (
	ContactsKey  = "jobAppHelperContacts"
	JobsKey      = "jobAppHelperSavedJobs"
	LinksKey     = "jobAppHelperQuickLinks"
	TemplatesKey = "jobAppHelperEmailTemplates"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a single namespace of string keys mapping to opaque values.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
