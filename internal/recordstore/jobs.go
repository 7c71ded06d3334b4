package recordstore

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/pkg/model"
)

// DateAddedLayout is the format of Job.DateAdded: RFC 3339 in UTC with milliseconds.
const DateAddedLayout = "2006-01-02T15:04:05.000Z07:00"

// JobSchema stores jobs under kvstore.JobsKey, keyed by their generated id.
var JobSchema = Schema[model.Job]{
	Kind:     "job",
	StoreKey: kvstore.JobsKey,
	KeyField: "id",
	Key:      func(j model.Job) string { return j.ID },
	Prepare:  prepareJob,
	Validate: func(j model.Job) error { return validateStruct(j) },
	Migrate:  decodeCollection[model.Job],
}

// JobColumns are the columns of the jobs export.
var JobColumns = []Column[model.Job]{
	StringColumn("Job Title", func(j model.Job) string { return j.Title }),
	StringColumn("Employer", func(j model.Job) string { return j.Employer }),
	StringColumn("URL", func(j model.Job) string { return j.URL }),
	StringColumn("Date Applied", func(j model.Job) string { return j.DateApplied }),
	StringColumn("Date Added", func(j model.Job) string { return j.DateAdded }),
}

// NewJobs returns the store for jobs.
func NewJobs(kv kvstore.Store, opts ...Option) *Store[model.Job] {
	return New(kv, JobSchema, opts...)
}

// NewJobID returns a time-ordered job id.
func NewJobID() string {
	return "job-" + uuid.Must(uuid.NewV7()).String()
}

func prepareJob(j model.Job, now time.Time) model.Job {
	j.Title = strings.TrimSpace(j.Title)
	j.Employer = strings.TrimSpace(j.Employer)
	j.URL = strings.TrimSpace(j.URL)
	j.DateApplied = strings.TrimSpace(j.DateApplied)
	if j.ID == "" {
		j.ID = NewJobID()
	}
	if j.DateAdded == "" {
		j.DateAdded = now.UTC().Format(DateAddedLayout)
	}
	return j
}

// addedAt parses DateAdded. Jobs with a missing or unparsable date report false.
func addedAt(j model.Job) (int64, bool) {
	t, err := time.Parse(time.RFC3339, j.DateAdded)
	if err != nil {
		return 0, false
	}
	return t.UnixMilli(), true
}

// SortJobs returns a sorted copy of jobs. Equal keys keep their relative order. An unknown key
// returns the jobs in their given order.
func SortJobs(jobs []model.Job, key SortKey) []model.Job {
	switch key {
	case SortRecent:
		return sortStable(jobs, func(a, b model.Job) int {
			at, aOK := addedAt(a)
			bt, bOK := addedAt(b)
			return compareNewest(at, aOK, bt, bOK)
		})
	case SortEmployer:
		c := newCollator()
		return sortStable(jobs, func(a, b model.Job) int {
			return compareEmptyLast(c, a.Employer, b.Employer)
		})
	default:
		return sortStable(jobs, func(model.Job, model.Job) int { return 0 })
	}
}
