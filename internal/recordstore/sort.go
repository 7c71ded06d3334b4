package recordstore

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the order of a sorted collection.
type SortKey string

const (
	// SortRecent orders newest first; records without a creation time come last.
	SortRecent SortKey = "recent"
	// SortName orders contacts by name.
	SortName SortKey = "name"
	// SortEmployer orders by employer; records without an employer come last.
	SortEmployer SortKey = "employer"
)

// allowedContactSorts and allowedJobSorts are the sort keys accepted per record kind.
var (
	allowedContactSorts = []SortKey{SortRecent, SortName, SortEmployer}
	allowedJobSorts     = []SortKey{SortRecent, SortEmployer}
)

// ParseContactSortKey validates a sort key for contacts.
func ParseContactSortKey(s string) (SortKey, error) {
	return parseSortKey(s, allowedContactSorts)
}

// ParseJobSortKey validates a sort key for jobs.
func ParseJobSortKey(s string) (SortKey, error) {
	return parseSortKey(s, allowedJobSorts)
}

func parseSortKey(s string, allowed []SortKey) (SortKey, error) {
	key := SortKey(s)
	if !slices.Contains(allowed, key) {
		return "", &ValidationError{Field: "sort", Reason: fmt.Sprintf("must be one of %v", allowed)}
	}
	return key, nil
}

// sortStable returns a sorted copy of records. The input is left untouched.
func sortStable[T any](records []T, compare func(a, b T) int) []T {
	out := slices.Clone(records)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, compare)
	return out
}

// newCollator returns a collator for locale-aware string ordering. A collator must not be shared
// between goroutines, so every sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// compareNewest orders present times descending and absent times last.
func compareNewest(a int64, aOK bool, b int64, bOK bool) int {
	switch {
	case aOK && bOK:
		return cmp.Compare(b, a)
	case aOK:
		return -1
	case bOK:
		return 1
	default:
		return 0
	}
}

// compareEmptyLast orders non-empty strings by collation and empty strings last.
func compareEmptyLast(c *collate.Collator, a, b string) int {
	switch {
	case a != "" && b != "":
		return c.CompareString(a, b)
	case a != "":
		return -1
	case b != "":
		return 1
	default:
		return 0
	}
}
