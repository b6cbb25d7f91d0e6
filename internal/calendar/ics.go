// Package calendar exports a schedule as an iCalendar file.
package calendar

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"

	"github.com/unive-tools/schedule-sync/internal/schedule"
)

const prodID = "-//unive-schedule//schedule-sync//IT"

// GenerateICS renders every slot of s as a VEVENT. Times are floating local times,
// as published on the schedule page.
func GenerateICS(s *schedule.Schedule, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	stamp := now.UTC().Format("20060102T150405Z")
	for _, p := range s.Periods {
		for _, d := range p.Days {
			for _, slot := range d.Slots {
				writeEvent(&ics, p.Name, d, slot, stamp)
			}
		}
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, period string, d *schedule.Day, slot *schedule.Slot, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@unive-schedule\r\n", eventUID(period, d.Key, slot)))
	ics.WriteString("DTSTAMP:" + stamp + "\r\n")
	ics.WriteString("DTSTART:" + localTime(d, slot.Time.Start) + "\r\n")
	ics.WriteString("DTEND:" + localTime(d, slot.Time.End) + "\r\n")
	ics.WriteString("SUMMARY:" + escapeICS(slot.Entry.Course) + "\r\n")
	if slot.Entry.Classroom != "" {
		ics.WriteString("LOCATION:" + escapeICS(slot.Entry.Classroom) + "\r\n")
	}
	ics.WriteString("DESCRIPTION:" + escapeICS(period) + "\r\n")
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// eventUID is stable across exports so calendar apps update events instead of duplicating them
func eventUID(period, dateKey string, slot *schedule.Slot) string {
	h := sha1.New()
	h.Write([]byte(period + "|" + dateKey + "|" + slot.Time.String() + "|" + slot.Entry.Course))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// localTime formats "yyyymmddThhmm00" from the day and an HH:MM clock
func localTime(d *schedule.Day, clock string) string {
	return d.Date.Format("20060102") + "T" + strings.Replace(clock, ":", "", 1) + "00"
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`)

// escapeICS escapes TEXT values (RFC 5545 3.3.11)
func escapeICS(s string) string {
	return icsEscaper.Replace(s)
}
