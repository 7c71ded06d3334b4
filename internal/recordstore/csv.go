package recordstore

import (
	"fmt"
	"strings"
	"time"
)

// Column renders one CSV column of a record.
type Column[T any] struct {
	Label string
	text  func(T) string
	flag  func(T) bool
}

// StringColumn is a column whose value is always quoted.
func StringColumn[T any](label string, value func(T) string) Column[T] {
	return Column[T]{Label: label, text: value}
}

// BoolColumn is a column rendered as the bare token Yes or No.
func BoolColumn[T any](label string, value func(T) bool) Column[T] {
	return Column[T]{Label: label, flag: value}
}

func (c Column[T]) render(record T) string {
	if c.flag != nil {
		if c.flag(record) {
			return "Yes"
		}
		return "No"
	}
	return quote(c.text(record))
}

// quote wraps a value in double quotes and doubles the quotes inside it.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ToCSV renders a header line of column labels followed by one line per record. Every line,
// including the last, ends with "\n".
func ToCSV[T any](records []T, columns []Column[T]) string {
	var b strings.Builder
	for i, c := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.Label)
	}
	b.WriteByte('\n')
	for _, r := range records {
		for i, c := range columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(c.render(r))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ExportFilename names the downloadable export of a collection, e.g. contacts_data_2024-05-01.csv.
func ExportFilename(collection string, at time.Time) string {
	return fmt.Sprintf("%s_data_%s.csv", collection, at.Format(time.DateOnly))
}
