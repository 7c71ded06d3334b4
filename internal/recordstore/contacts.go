package recordstore

import (
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/pkg/model"
)

// ContactSchema stores contacts under kvstore.ContactsKey, keyed by email address.
var ContactSchema = Schema[model.Contact]{
	Kind:     "contact",
	StoreKey: kvstore.ContactsKey,
	KeyField: "email",
	Key:      func(c model.Contact) string { return c.Email },
	Prepare:  prepareContact,
	Validate: func(c model.Contact) error { return validateStruct(c) },
	Migrate:  decodeCollection[model.Contact],
}

// ContactColumns are the columns of the contacts export.
var ContactColumns = []Column[model.Contact]{
	StringColumn("Name", func(c model.Contact) string { return c.Name }),
	StringColumn("Email", func(c model.Contact) string { return c.Email }),
	StringColumn("Employer", func(c model.Contact) string { return c.Employer }),
	StringColumn("URL", func(c model.Contact) string { return c.URL }),
	BoolColumn("Reached Out", func(c model.Contact) bool { return c.ReachedOut }),
}

// NewContacts returns the store for contacts.
func NewContacts(kv kvstore.Store, opts ...Option) *Store[model.Contact] {
	return New(kv, ContactSchema, opts...)
}

func prepareContact(c model.Contact, now time.Time) model.Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Employer = strings.TrimSpace(c.Employer)
	c.URL = strings.TrimSpace(c.URL)
	if c.Timestamp == 0 {
		c.Timestamp = now.UnixMilli()
	}
	return c
}

// SortContacts returns a sorted copy of contacts. Equal keys keep their relative order. An
// unknown key returns the contacts in their given order.
func SortContacts(contacts []model.Contact, key SortKey) []model.Contact {
	switch key {
	case SortRecent:
		return sortStable(contacts, func(a, b model.Contact) int {
			return compareNewest(a.Timestamp, a.Timestamp != 0, b.Timestamp, b.Timestamp != 0)
		})
	case SortName:
		c := newCollator()
		return sortStable(contacts, func(a, b model.Contact) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortEmployer:
		c := newCollator()
		return sortStable(contacts, func(a, b model.Contact) int {
			return compareEmptyLast(c, a.Employer, b.Employer)
		})
	default:
		return sortStable(contacts, func(model.Contact, model.Contact) int { return 0 })
	}
}
