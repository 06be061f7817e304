package curator

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Audit writes one CSV row per processed post, preserving discovery order.
type Audit struct {
	w *csv.Writer
}

// NewAudit creates an audit writer and emits the header row.
func NewAudit(w io.Writer) (*Audit, error) {
	a := &Audit{w: csv.NewWriter(w)}
	header := []string{
		"id", "status", "category", "title", "summary", "tags", "subjects",
		"slug", "reason", "input_tokens", "output_tokens", "total_tokens",
	}
	if err := a.w.Write(header); err != nil {
		return nil, fmt.Errorf("write audit header: %w", err)
	}
	return a, nil
}

// Record appends one result row.
func (a *Audit) Record(r Result) error {
	row := []string{
		r.ID,
		string(r.Status),
		r.Category,
		r.Title,
		r.Summary,
		strings.Join(r.Tags, ", "),
		strings.Join(r.Subjects, ", "),
		r.Slug,
		r.Reason,
		strconv.Itoa(r.Usage.Input),
		strconv.Itoa(r.Usage.Output),
		strconv.Itoa(r.Usage.Total),
	}
	if err := a.w.Write(row); err != nil {
		return fmt.Errorf("write audit row: %w", err)
	}
	return nil
}

// Flush flushes buffered rows and reports any write error.
func (a *Audit) Flush() error {
	a.w.Flush()
	return a.w.Error()
}
