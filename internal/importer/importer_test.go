package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/unive-tools/schedule-sync/internal/notion"
	"github.com/unive-tools/schedule-sync/internal/schedule"
)

type createCall struct {
	collection string
	props      notion.Properties
}

// fakeStore keeps pages in memory and can fail on a given call.
type fakeStore struct {
	pages     map[string][]notion.Record
	creates   []createCall
	queries   int
	queryErr  error
	createErr error
	// failCreateAt makes the n-th create (1-based) fail with createErr
	failCreateAt int
}

func newFakeStore() *fakeStore {
	return &fakeStore{pages: make(map[string][]notion.Record)}
}

func (f *fakeStore) addClass(t *testing.T, id, fullName string) {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"type":      "rich_text",
		"rich_text": []map[string]string{{"plain_text": fullName}},
	})
	if err != nil {
		t.Fatal(err)
	}
	f.pages["classes"] = append(f.pages["classes"], notion.Record{
		ID:         id,
		Properties: map[string]json.RawMessage{"Full Name": raw},
	})
}

func (f *fakeStore) QueryRecords(_ context.Context, collection string) ([]notion.Record, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.pages[collection], nil
}

func (f *fakeStore) CreateRecord(_ context.Context, collection string, props notion.Properties) (string, error) {
	f.creates = append(f.creates, createCall{collection: collection, props: props})
	if f.createErr != nil && (f.failCreateAt == 0 || f.failCreateAt == len(f.creates)) {
		return "", f.createErr
	}

	id := fmt.Sprintf("page-%d", len(f.creates))
	rec := notion.Record{ID: id, Properties: make(map[string]json.RawMessage)}
	for name, p := range props {
		// store the property the way Notion echoes text back
		for kind, v := range p {
			if kind != "title" && kind != "rich_text" {
				continue
			}
			raw, _ := json.Marshal(v)
			var parts []struct {
				Text struct {
					Content string `json:"content"`
				} `json:"text"`
			}
			json.Unmarshal(raw, &parts)
			text := make([]map[string]string, 0, len(parts))
			for _, part := range parts {
				text = append(text, map[string]string{"plain_text": part.Text.Content})
			}
			rec.Properties[name], _ = json.Marshal(map[string]interface{}{"type": kind, kind: text})
		}
	}
	f.pages[collection] = append(f.pages[collection], rec)
	return id, nil
}

func newTestImporter(t *testing.T, store RecordStore, cacheSize int) (*Importer, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	imp, err := New(store, Options{
		ClassesDatabaseID:  "classes",
		SessionsDatabaseID: "sessions",
		CacheSize:          cacheSize,
		Output:             &out,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return imp, &out
}

func testSchedule(t *testing.T) *schedule.Schedule {
	t.Helper()
	s := schedule.New()
	add := func(period, date, start, end, course, room string) {
		if err := s.Set(period, date, schedule.TimeRange{Start: start, End: end}, schedule.Entry{Course: course, Classroom: room}); err != nil {
			t.Fatal(err)
		}
	}
	add("I Semestre", "01/03/2024", "09:15", "11:00", "Statistics", "Room 3")
	add("I Semestre", "01/03/2024", "14:00", "15:30", "Algorithms", "Aula 1")
	add("I Semestre", "08/03/2024", "09:15", "11:00", "Statistics", "Room 3")
	add("II Semestre", "10/09/2024", "10:00", "12:00", "Networks", "Lab 2")
	s.Sort()
	return s
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		store RecordStore
		opts  Options
	}{
		{"nil store", nil, Options{ClassesDatabaseID: "c", SessionsDatabaseID: "s"}},
		{"no classes db", newFakeStore(), Options{SessionsDatabaseID: "s"}},
		{"no sessions db", newFakeStore(), Options{ClassesDatabaseID: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.store, tt.opts); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestResolveOrCreateClass_Found(t *testing.T) {
	store := newFakeStore()
	store.addClass(t, "existing-id", "STATISTICS")
	imp, out := newTestImporter(t, store, 0)

	id, err := imp.ResolveOrCreateClass(context.Background(), "Statistics")
	if err != nil {
		t.Fatalf("ResolveOrCreateClass() error: %v", err)
	}
	if id != "existing-id" {
		t.Errorf("id = %q, want existing-id", id)
	}
	if len(store.creates) != 0 {
		t.Errorf("created %d pages, want 0", len(store.creates))
	}
	if !strings.Contains(out.String(), "Class Statistics found") {
		t.Errorf("output = %q", out.String())
	}
}

func TestResolveOrCreateClass_Create(t *testing.T) {
	store := newFakeStore()
	store.addClass(t, "other", "Algorithms")
	imp, _ := newTestImporter(t, store, 0)

	id, err := imp.ResolveOrCreateClass(context.Background(), "Statistics")
	if err != nil {
		t.Fatalf("ResolveOrCreateClass() error: %v", err)
	}
	if id != "page-1" {
		t.Errorf("id = %q, want page-1", id)
	}

	if len(store.creates) != 1 || store.creates[0].collection != "classes" {
		t.Fatalf("creates = %+v", store.creates)
	}
	props := store.creates[0].props
	if _, ok := props["Name"]["title"]; !ok {
		t.Errorf("Name is not a title property: %v", props["Name"])
	}
	if _, ok := props["Full Name"]["rich_text"]; !ok {
		t.Errorf("Full Name is not a rich text property: %v", props["Full Name"])
	}
}

func TestResolveOrCreateClass_QueryFailure(t *testing.T) {
	store := newFakeStore()
	store.queryErr = &notion.APIError{Status: 500, Message: "internal"}
	imp, _ := newTestImporter(t, store, 0)

	_, err := imp.ResolveOrCreateClass(context.Background(), "Statistics")

	var apiErr *notion.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 500 {
		t.Fatalf("error = %v, want wrapped APIError", err)
	}
	if len(store.creates) != 0 {
		t.Errorf("create attempted after a failed query")
	}
}

func TestResolveOrCreateClass_Cache(t *testing.T) {
	tests := []struct {
		name        string
		cacheSize   int
		wantQueries int
	}{
		{"cached", 16, 1},
		{"uncached", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			imp, _ := newTestImporter(t, store, tt.cacheSize)

			var ids []string
			for _, name := range []string{"Statistics", "statistics", "Statistics"} {
				id, err := imp.ResolveOrCreateClass(context.Background(), name)
				if err != nil {
					t.Fatal(err)
				}
				ids = append(ids, id)
			}

			if store.queries != tt.wantQueries {
				t.Errorf("queries = %d, want %d", store.queries, tt.wantQueries)
			}
			if len(store.creates) != 1 {
				t.Errorf("creates = %d, want 1", len(store.creates))
			}
			if ids[0] != ids[1] || ids[1] != ids[2] {
				t.Errorf("ids = %v, want all equal", ids)
			}
		})
	}
}

func TestInsertSession(t *testing.T) {
	store := newFakeStore()
	imp, out := newTestImporter(t, store, 0)

	err := imp.InsertSession(context.Background(), "Statistics", "class-1", "2024-03-01", "09:15", "2024-03-01", "11:00", "Room 3")
	if err != nil {
		t.Fatalf("InsertSession() error: %v", err)
	}

	if len(store.creates) != 1 || store.creates[0].collection != "sessions" {
		t.Fatalf("creates = %+v", store.creates)
	}

	data, err := json.Marshal(store.creates[0].props)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, want := range []string{
		`"start":"2024-03-01T09:15:00Z"`,
		`"end":"2024-03-01T11:00:00Z"`,
		`"relation":[{"id":"class-1"}]`,
		`"Classroom":{"rich_text":[{"text":{"content":"Room 3"}}]}`,
		`"Name":{"title":[{"text":{"content":"Statistics"}}]}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("properties missing %s:\n%s", want, body)
		}
	}
	if !strings.Contains(out.String(), "Session Statistics on 2024-03-01 09:15-11:00") {
		t.Errorf("output = %q", out.String())
	}
}

func TestInsertSession_OffsetAndPropertyNames(t *testing.T) {
	store := newFakeStore()
	imp, err := New(store, Options{
		ClassesDatabaseID:   "classes",
		SessionsDatabaseID:  "sessions",
		SessionDateProperty: "When",
		TimeOffset:          "+01:00",
		Output:              &bytes.Buffer{},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := imp.InsertSession(context.Background(), "A", "c", "2024-03-01", "09:15", "2024-03-01", "11:00", ""); err != nil {
		t.Fatal(err)
	}

	date, ok := store.creates[0].props["When"]["date"].(map[string]string)
	if !ok {
		t.Fatalf("When property = %v", store.creates[0].props["When"])
	}
	if date["start"] != "2024-03-01T09:15:00+01:00" {
		t.Errorf("start = %q", date["start"])
	}
}

func TestImport(t *testing.T) {
	store := newFakeStore()
	imp, out := newTestImporter(t, store, 0)

	result, err := imp.Import(context.Background(), testSchedule(t))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if result.Sessions != 4 || result.ClassesCreated != 3 || result.ClassesFound != 1 {
		t.Errorf("result = %+v, want 4 sessions, 3 created, 1 found", result)
	}
	if got := len(store.pages["sessions"]); got != 4 {
		t.Errorf("sessions created = %d, want 4", got)
	}

	// sessions are created in schedule order, each linked to its class
	var titles []string
	for _, c := range store.creates {
		if c.collection != "sessions" {
			continue
		}
		data, _ := json.Marshal(c.props["Date"])
		titles = append(titles, string(data))
	}
	want := []string{"2024-03-01T09:15", "2024-03-01T14:00", "2024-03-08T09:15", "2024-09-10T10:00"}
	for i, w := range want {
		if i >= len(titles) || !strings.Contains(titles[i], w) {
			t.Errorf("session %d = %v, want start %s", i, titles, w)
		}
	}

	if !strings.Contains(out.String(), "Class Statistics found in Notion") {
		t.Errorf("second Statistics session should reuse the class:\n%s", out.String())
	}
}

func TestImport_StopsOnQueryFailure(t *testing.T) {
	store := newFakeStore()
	store.queryErr = &notion.APIError{Status: 503, Message: "unavailable"}
	imp, _ := newTestImporter(t, store, 0)

	result, err := imp.Import(context.Background(), testSchedule(t))

	var apiErr *notion.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Import() error = %v, want APIError", err)
	}
	if store.queries != 1 {
		t.Errorf("queries = %d, want 1", store.queries)
	}
	if len(store.creates) != 0 || result.Sessions != 0 {
		t.Errorf("import continued after failure: creates=%d result=%+v", len(store.creates), result)
	}
}

func TestImport_StopsOnCreateFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = &notion.APIError{Status: 400, Code: "validation_error", Message: "bad"}
	store.failCreateAt = 4 // second session
	imp, _ := newTestImporter(t, store, 0)

	result, err := imp.Import(context.Background(), testSchedule(t))
	if err == nil {
		t.Fatal("Import() expected error")
	}
	if result.Sessions != 1 {
		t.Errorf("Sessions = %d, want 1", result.Sessions)
	}
	if len(store.creates) != 4 {
		t.Errorf("creates = %d, want 4", len(store.creates))
	}
}

func TestImport_ReimportDuplicatesSessions(t *testing.T) {
	store := newFakeStore()
	s := testSchedule(t)

	for i := 0; i < 2; i++ {
		imp, _ := newTestImporter(t, store, 16)
		if _, err := imp.Import(context.Background(), s); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(store.pages["classes"]); got != 3 {
		t.Errorf("classes = %d, want 3", got)
	}
	if got := len(store.pages["sessions"]); got != 8 {
		t.Errorf("sessions = %d, want 8", got)
	}
}

func TestImport_Cancelled(t *testing.T) {
	store := newFakeStore()
	imp, _ := newTestImporter(t, store, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := imp.Import(ctx, testSchedule(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Import() error = %v, want context.Canceled", err)
	}
	if store.queries != 0 {
		t.Errorf("queries = %d, want 0", store.queries)
	}
}

func TestImport_DryRun(t *testing.T) {
	var printed bytes.Buffer
	imp, _ := newTestImporter(t, notion.NewDryRunStore(&printed), 16)

	result, err := imp.Import(context.Background(), testSchedule(t))
	if err != nil {
		t.Fatal(err)
	}
	if result.Sessions != 4 || result.ClassesCreated != 3 {
		t.Errorf("result = %+v", result)
	}
	if got := strings.Count(printed.String(), "--- Page"); got != 7 {
		t.Errorf("printed %d pages, want 7", got)
	}
}
