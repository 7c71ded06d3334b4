package recordstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/pkg/model"
)

// fixedClock returns a clock that always reports the given time.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// brokenStore fails the operations selected by its fields.
type brokenStore struct {
	kvstore.Store
	failGet, failSet, failRemove bool
}

var errUnavailable = errors.New("storage unavailable")

func (s brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet {
		return nil, errUnavailable
	}
	return s.Store.Get(ctx, key)
}

func (s brokenStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return errUnavailable
	}
	return s.Store.Set(ctx, key, value)
}

func (s brokenStore) Remove(ctx context.Context, key string) error {
	if s.failRemove {
		return errUnavailable
	}
	return s.Store.Remove(ctx, key)
}

// TestListEmpty lists a collection that was never written. It expects an empty, non-nil slice.
func TestListEmpty(t *testing.T) {
	contacts, err := NewContacts(kvstore.NewMemory()).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

// TestAddContactThenDuplicate adds a contact and then another one with the same email. It expects
// the second add to fail and the stored collection to stay byte-for-byte unchanged.
func TestAddContactThenDuplicate(t *testing.T) {
	kv := kvstore.NewMemory()
	store := NewContacts(kv)
	ctx := context.Background()

	first := model.Contact{Name: "A", Email: "a@x.com", Timestamp: 100}
	added, err := store.Add(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, added)
	before, err := kv.Get(ctx, kvstore.ContactsKey)
	require.NoError(t, err)

	_, err = store.Add(ctx, model.Contact{Name: "B", Email: "a@x.com"})
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a@x.com", dup.Key)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	after, err := kv.Get(ctx, kvstore.ContactsKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	contacts, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Contact{first}, contacts)
}

// TestAddContactInsertsAtHead adds several contacts. It expects the newest to come first and
// missing timestamps to be set from the clock.
func TestAddContactInsertsAtHead(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	store := NewContacts(kvstore.NewMemory(), WithClock(fixedClock(now)))
	ctx := context.Background()

	_, err := store.Add(ctx, model.Contact{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = store.Add(ctx, model.Contact{Name: " Bob ", Email: " bob@example.com ", Timestamp: 5})
	require.NoError(t, err)

	contacts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Bob", contacts[0].Name)
	assert.Equal(t, "bob@example.com", contacts[0].Email)
	assert.Equal(t, int64(5), contacts[0].Timestamp)
	assert.Equal(t, "Ada", contacts[1].Name)
	assert.Equal(t, now.UnixMilli(), contacts[1].Timestamp)
	assert.False(t, contacts[1].ReachedOut)
}

// TestAddContactValidation adds invalid contacts. It expects a ValidationError naming the field
// and no write to the store.
func TestAddContactValidation(t *testing.T) {
	cases := []struct {
		contact model.Contact
		field   string
	}{
		{model.Contact{Email: "a@x.com"}, "name"},
		{model.Contact{Name: "   ", Email: "a@x.com"}, "name"},
		{model.Contact{Name: "A"}, "email"},
		{model.Contact{Name: "A", Email: "ax.com"}, "email"},
		{model.Contact{Name: "A", Email: "a@xcom"}, "email"},
	}
	for _, tc := range cases {
		kv := kvstore.NewMemory()
		_, err := NewContacts(kv).Add(context.Background(), tc.contact)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "contact: %+v", tc.contact)
		assert.Equal(t, tc.field, verr.Field)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = kv.Get(context.Background(), kvstore.ContactsKey)
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	}
}

// TestAddJobGeneratesIDAndDate adds a job without id and date. It expects both to be generated.
func TestAddJobGeneratesIDAndDate(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 30, 15, 250_000_000, time.UTC)
	store := NewJobs(kvstore.NewMemory(), WithClock(fixedClock(now)))

	job, err := store.Add(context.Background(), model.Job{Title: "Engineer", URL: "https://jobs.example.com/1"})
	require.NoError(t, err)
	assert.Regexp(t, `^job-[0-9a-f-]{36}$`, job.ID)
	assert.Equal(t, "2024-05-01T12:30:15.250Z", job.DateAdded)
}

// TestAddJobValidation adds invalid jobs. It expects a ValidationError naming the field.
func TestAddJobValidation(t *testing.T) {
	cases := []struct {
		job   model.Job
		field string
	}{
		{model.Job{URL: "https://x.example"}, "title"},
		{model.Job{Title: "Engineer"}, "url"},
		{model.Job{Title: "Engineer", URL: "https://x.example", DateApplied: "05/01/2024"}, "dateApplied"},
	}
	for _, tc := range cases {
		_, err := NewJobs(kvstore.NewMemory()).Add(context.Background(), tc.job)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "job: %+v", tc.job)
		assert.Equal(t, tc.field, verr.Field)
	}
}

// TestAddJobDateAdded adds jobs with a given creation time. It expects RFC 3339 timestamps to be
// kept and anything else to be rejected.
func TestAddJobDateAdded(t *testing.T) {
	store := NewJobs(kvstore.NewMemory())
	ctx := context.Background()

	job, err := store.Add(ctx, model.Job{Title: "SRE", URL: "https://acme.example/sre", DateAdded: "2024-05-01T10:00:00.000Z"})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", job.DateAdded)

	_, err = store.Add(ctx, model.Job{Title: "SRE", URL: "https://acme.example/sre", DateAdded: "yesterday"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dateAdded", verr.Field)
	assert.Equal(t, "must be an RFC 3339 timestamp", verr.Reason)

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

// TestAddJobDuplicateID adds two jobs with the same explicit id. It expects the second to fail.
func TestAddJobDuplicateID(t *testing.T) {
	store := NewJobs(kvstore.NewMemory())
	ctx := context.Background()

	_, err := store.Add(ctx, model.Job{ID: "job-1", Title: "A", URL: "https://a.example"})
	require.NoError(t, err)
	_, err = store.Add(ctx, model.Job{ID: "job-1", Title: "B", URL: "https://b.example"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "A", jobs[0].Title)
}

// TestRemoveIsIdempotent removes the same contact twice. It expects both calls to succeed and to
// leave the same collection behind.
func TestRemoveIsIdempotent(t *testing.T) {
	kv := kvstore.NewMemory()
	store := NewContacts(kv)
	ctx := context.Background()
	_, err := store.Add(ctx, model.Contact{Name: "A", Email: "a@x.com", Timestamp: 1})
	require.NoError(t, err)
	_, err = store.Add(ctx, model.Contact{Name: "B", Email: "b@x.com", Timestamp: 2})
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, "a@x.com"))
	first, err := kv.Get(ctx, kvstore.ContactsKey)
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, "a@x.com"))
	second, err := kv.Get(ctx, kvstore.ContactsKey)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	contacts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "b@x.com", contacts[0].Email)
}

// TestRemoveJob removes a job by id. It expects the other jobs to stay.
func TestRemoveJob(t *testing.T) {
	store := NewJobs(kvstore.NewMemory())
	ctx := context.Background()
	a, err := store.Add(ctx, model.Job{Title: "A", URL: "https://a.example"})
	require.NoError(t, err)
	b, err := store.Add(ctx, model.Job{Title: "B", URL: "https://b.example"})
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, a.ID))
	jobs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Job{b}, jobs)
}

// TestUpdateTogglesReachedOut toggles the reachedOut flag. It expects only the matching contact
// to change.
func TestUpdateTogglesReachedOut(t *testing.T) {
	store := NewContacts(kvstore.NewMemory())
	ctx := context.Background()
	_, err := store.Add(ctx, model.Contact{Name: "A", Email: "a@x.com", Timestamp: 1})
	require.NoError(t, err)
	_, err = store.Add(ctx, model.Contact{Name: "B", Email: "b@x.com", Timestamp: 2})
	require.NoError(t, err)

	toggle := func(c model.Contact) model.Contact {
		c.ReachedOut = !c.ReachedOut
		return c
	}
	updated, err := store.Update(ctx, "a@x.com", toggle)
	require.NoError(t, err)
	assert.True(t, updated.ReachedOut)

	contacts, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Contact{
		{Name: "B", Email: "b@x.com", Timestamp: 2},
		{Name: "A", Email: "a@x.com", Timestamp: 1, ReachedOut: true},
	}, contacts)

	updated, err = store.Update(ctx, "a@x.com", toggle)
	require.NoError(t, err)
	assert.False(t, updated.ReachedOut)
}

// TestUpdateLegacyRecord toggles a contact written by an older version without a name. It
// expects the flag to be toggled and the record to stay otherwise unchanged.
func TestUpdateLegacyRecord(t *testing.T) {
	kv := kvstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, kvstore.ContactsKey, []byte(`[{"name":"","email":"legacy@x.com"}]`)))
	store := NewContacts(kv)

	updated, err := store.Update(ctx, "legacy@x.com", func(c model.Contact) model.Contact {
		c.ReachedOut = !c.ReachedOut
		return c
	})
	require.NoError(t, err)
	assert.True(t, updated.ReachedOut)

	contacts, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Contact{{Email: "legacy@x.com", ReachedOut: true}}, contacts)
}

// TestUpdateMissing updates a contact that does not exist. It expects a NotFoundError.
func TestUpdateMissing(t *testing.T) {
	_, err := NewContacts(kvstore.NewMemory()).Update(context.Background(), "nobody@x.com",
		func(c model.Contact) model.Contact { return c })
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nobody@x.com", nf.Key)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestGet looks up a stored contact and a missing one. It expects the record and a
// NotFoundError.
func TestGet(t *testing.T) {
	store := NewContacts(kvstore.NewMemory())
	ctx := context.Background()
	_, err := store.Add(ctx, model.Contact{Name: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)

	found, err := store.Get(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.Name)

	_, err = store.Get(ctx, "bob@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestUpdateCannotChangeKey lets the mutator change the email. It expects a ValidationError and
// an unchanged collection.
func TestUpdateCannotChangeKey(t *testing.T) {
	store := NewContacts(kvstore.NewMemory())
	ctx := context.Background()
	original, err := store.Add(ctx, model.Contact{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = store.Update(ctx, "a@x.com", func(c model.Contact) model.Contact {
		c.Email = "other@x.com"
		return c
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	contacts, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Contact{original}, contacts)
}

// TestClear removes the collection. It expects the key to be gone and the list to be empty.
func TestClear(t *testing.T) {
	kv := kvstore.NewMemory()
	store := NewJobs(kv)
	ctx := context.Background()
	_, err := store.Add(ctx, model.Job{Title: "A", URL: "https://a.example"})
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))
	_, err = kv.Get(ctx, kvstore.JobsKey)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
	jobs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	require.NoError(t, store.Clear(ctx))
}

// TestIoErrors lets the underlying store fail. It expects every operation to report an IoError
// wrapping the cause.
func TestIoErrors(t *testing.T) {
	ctx := context.Background()
	contact := model.Contact{Name: "A", Email: "a@x.com"}
	noop := func(c model.Contact) model.Contact { return c }

	readFails := NewContacts(brokenStore{Store: kvstore.NewMemory(), failGet: true})
	_, err := readFails.List(ctx)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, errUnavailable)
	_, err = readFails.Add(ctx, contact)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, readFails.Remove(ctx, "a@x.com"), ErrIO)
	_, err = readFails.Update(ctx, "a@x.com", noop)
	assert.ErrorIs(t, err, ErrIO)

	writeFails := NewContacts(brokenStore{Store: kvstore.NewMemory(), failSet: true, failRemove: true})
	_, err = writeFails.Add(ctx, contact)
	var ioErr *IoError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "contact save", ioErr.Op)
	assert.ErrorIs(t, writeFails.Remove(ctx, "a@x.com"), ErrIO)
	assert.ErrorIs(t, writeFails.Clear(ctx), ErrIO)
}

// TestListCorruptValue stores a value that is not a collection. It expects an IoError.
func TestListCorruptValue(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(context.Background(), kvstore.ContactsKey, []byte(`"not a list"`)))

	_, err := NewContacts(kv).List(context.Background())
	assert.ErrorIs(t, err, ErrIO)
}
