package main

import (
	"fmt"
	"os"

	"github.com/unive-tools/schedule-sync/internal/schedule"
	"github.com/unive-tools/schedule-sync/internal/storage"
)

// Writes a small schedule in every format, handy for trying
// schedule-import --dry-run without scraping the live page.
func main() {
	s := schedule.New()
	sample := []struct {
		date, start, end, course, room string
	}{
		{"01/03/2024", "09:15", "11:00", "Statistics", "Room 3"},
		{"08/03/2024", "09:15", "11:00", "Statistics", "Room 3"},
		{"05/03/2024", "14:00", "15:30", "Algorithms", "Aula 1"},
	}
	for _, c := range sample {
		tr := schedule.TimeRange{Start: c.start, End: c.end}
		if err := s.Set("I Semestre", c.date, tr, schedule.Entry{Course: c.course, Classroom: c.room}); err != nil {
			fmt.Fprintf(os.Stderr, "Error building sample: %v\n", err)
			os.Exit(1)
		}
	}
	s.Sort()

	for _, name := range []string{"sample-schedule.json", "sample-schedule.yaml", "sample-schedule.ics"} {
		if err := storage.Save(name, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("✅ Generated %s\n", name)
	}

	fmt.Println("\nTry it with:")
	fmt.Println("  schedule-import --dry-run   (then type sample-schedule.json)")
}
