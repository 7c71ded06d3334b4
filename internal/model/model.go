package model

// Entry is one row of the key-value table. The value holds the full JSON document stored under
// the key. UpdatedAt is in milliseconds since the epoch.
type Entry struct {
	Key       string `db:"item_key"`
	Value     []byte `db:"item_value"`
	UpdatedAt int64  `db:"updated_at"`
}
