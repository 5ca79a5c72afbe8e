package session

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Entry is one visible list item. Path is the file the user added, never a
// converted artifact.
type Entry struct {
	Path string `json:"path"`
	Ext  string `json:"ext"`
}

// Name returns the base name of the entry.
func (e Entry) Name() string { return filepath.Base(e.Path) }

// Rejection records why a file was not added.
type Rejection struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// AddReport summarizes a call to Add.
type AddReport struct {
	Added     []Entry     `json:"added"`
	Converted int         `json:"converted"`
	Skipped   []string    `json:"skipped,omitempty"`
	Rejected  []Rejection `json:"rejected,omitempty"`
}

// Summary returns a combined human-readable message.
func (r AddReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Added %d file(s)", len(r.Added))
	if r.Converted > 0 {
		fmt.Fprintf(&b, " (converted: %d)", r.Converted)
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, ", skipped %d already in the list", len(r.Skipped))
	}
	for _, rej := range r.Rejected {
		fmt.Fprintf(&b, "\n%s: %s", filepath.Base(rej.Path), rej.Reason)
	}
	return b.String()
}
