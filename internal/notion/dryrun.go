package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DryRunStore prints the pages that would be created without calling Notion.
// Queries always come back empty, so every class is reported as new.
type DryRunStore struct {
	w       io.Writer
	created int
}

// NewDryRunStore creates a dry-run store writing to w (stdout when nil)
func NewDryRunStore(w io.Writer) *DryRunStore {
	if w == nil {
		w = os.Stdout
	}
	return &DryRunStore{w: w}
}

// CreateRecord prints the page and returns a placeholder id
func (s *DryRunStore) CreateRecord(_ context.Context, databaseID string, props Properties) (string, error) {
	s.created++

	data, err := json.MarshalIndent(props, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling properties: %w", err)
	}

	fmt.Fprintf(s.w, "--- Page %d in database %s ---\n", s.created, databaseID)
	fmt.Fprintf(s.w, "%s\n\n", data)
	return fmt.Sprintf("dry-run-%d", s.created), nil
}

// QueryRecords returns no records
func (s *DryRunStore) QueryRecords(context.Context, string) ([]Record, error) {
	return nil, nil
}

// Created returns how many pages would have been created
func (s *DryRunStore) Created() int {
	return s.created
}
