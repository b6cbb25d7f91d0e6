package cli

import (
	"fmt"
	"io"

	"github.com/unive-tools/schedule-sync/internal/importer"
	"github.com/unive-tools/schedule-sync/internal/schedule"
)

// WriteSummary prints how many days and slots every period holds
func WriteSummary(w io.Writer, s *schedule.Schedule) {
	if s.Len() == 0 {
		fmt.Fprintln(w, "No classes found.")
		return
	}

	for _, p := range s.Periods {
		slots := 0
		for _, d := range p.Days {
			slots += len(d.Slots)
		}
		fmt.Fprintf(w, "%s: %d days, %d classes\n", p.Name, len(p.Days), slots)
		if len(p.Days) > 0 {
			fmt.Fprintf(w, "  From %s to %s\n", p.Days[0].Key, p.Days[len(p.Days)-1].Key)
		}
	}

	courses := s.Courses()
	fmt.Fprintf(w, "\nTotal: %d classes across %d courses\n", s.Len(), len(courses))
	for _, c := range courses {
		fmt.Fprintf(w, "  - %s\n", c)
	}
}

// WriteImportResult prints the counts of an import
func WriteImportResult(w io.Writer, r *importer.Result) {
	fmt.Fprintf(w, "Classes: %d found, %d created\n", r.ClassesFound, r.ClassesCreated)
	fmt.Fprintf(w, "Sessions: %d added\n", r.Sessions)
}
