package notion

import (
	"encoding/json"
	"testing"
)

func TestPropertyBuilders(t *testing.T) {
	tests := []struct {
		name string
		prop Property
		want string
	}{
		{"title", Title("Statistics"), `{"title":[{"text":{"content":"Statistics"}}]}`},
		{"rich text", RichText("Room 3"), `{"rich_text":[{"text":{"content":"Room 3"}}]}`},
		{"date range", DateRange("2024-03-01T09:15:00Z", "2024-03-01T11:00:00Z"), `{"date":{"end":"2024-03-01T11:00:00Z","start":"2024-03-01T09:15:00Z"}}`},
		{"date start only", DateRange("2024-03-01", ""), `{"date":{"start":"2024-03-01"}}`},
		{"relation", Relation("page-1"), `{"relation":[{"id":"page-1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.prop)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("got %s, want %s", data, tt.want)
			}
		})
	}
}

func TestRecordText(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{
		"id": "page-1",
		"properties": {
			"Name": {"id": "title", "type": "title", "title": [{"type": "text", "text": {"content": "Stats"}, "plain_text": "Stats"}]},
			"Full Name": {"id": "x", "type": "rich_text", "rich_text": [
				{"type": "text", "text": {"content": "Statistics "}, "plain_text": "Statistics "},
				{"type": "text", "text": {"content": "I"}}
			]},
			"Date": {"id": "d", "type": "date", "date": {"start": "2024-03-01"}}
		}
	}`), &r)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		property string
		want     string
	}{
		{"Name", "Stats"},
		{"Full Name", "Statistics I"},
		{"Date", ""},
		{"Missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			if got := r.Text(tt.property); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.property, got, tt.want)
			}
		})
	}
}
