package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/unive-tools/schedule-sync/internal/schedule"
)

func testSchedule(t *testing.T) *schedule.Schedule {
	t.Helper()
	s := schedule.New()
	if err := s.Set("I Semestre", "01/03/2024", schedule.TimeRange{Start: "09:15", End: "11:00"}, schedule.Entry{Course: "Statistics", Classroom: "Room 3, Building A"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("I Semestre", "08/03/2024", schedule.TimeRange{Start: "14:00", End: "15:30"}, schedule.Entry{Course: "Databases"}); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGenerateICS(t *testing.T) {
	now := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	ics := GenerateICS(testSchedule(t), now)

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"BEGIN:VEVENT",
		"DTSTAMP:20240201T080000Z",
		"DTSTART:20240301T091500",
		"DTEND:20240301T110000",
		"SUMMARY:Statistics",
		"LOCATION:Room 3\\, Building A",
		"DESCRIPTION:I Semestre",
		"DTSTART:20240308T140000",
		"SUMMARY:Databases",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("got %d events, want 2", got)
	}

	// no classroom, no LOCATION
	if got := strings.Count(ics, "LOCATION:"); got != 1 {
		t.Errorf("got %d LOCATION lines, want 1", got)
	}

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if strings.Contains(line, "\n") {
			t.Errorf("line %q is not CRLF terminated", line)
		}
	}
}

func TestGenerateICS_StableUIDs(t *testing.T) {
	a := GenerateICS(testSchedule(t), time.Now())
	b := GenerateICS(testSchedule(t), time.Now().Add(time.Hour))

	uids := func(ics string) []string {
		var out []string
		for _, line := range strings.Split(ics, "\r\n") {
			if strings.HasPrefix(line, "UID:") {
				out = append(out, line)
			}
		}
		return out
	}

	ua, ub := uids(a), uids(b)
	if len(ua) != 2 || strings.Join(ua, ",") != strings.Join(ub, ",") {
		t.Fatalf("UIDs differ between exports: %v vs %v", ua, ub)
	}
	if ua[0] == ua[1] {
		t.Errorf("distinct slots share UID %s", ua[0])
	}
}

func TestGenerateICS_Empty(t *testing.T) {
	ics := GenerateICS(schedule.New(), time.Now())

	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("empty schedule should produce no events")
	}
	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Errorf("malformed calendar: %q", ics)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text, with comma", "Text\\, with comma"},
		{"Text; with semicolon", "Text\\; with semicolon"},
		{"Text\\with backslash", "Text\\\\with backslash"},
		{"Text\nwith newline", "Text\\nwith newline"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeICS(tt.input); got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
