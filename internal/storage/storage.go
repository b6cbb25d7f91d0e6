package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/unive-tools/schedule-sync/internal/calendar"
	"github.com/unive-tools/schedule-sync/internal/schedule"
	"gopkg.in/yaml.v2"
)

// Format is a schedule file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

// DefaultFileName is the schedule file the extractor writes and the importer reads by default.
const DefaultFileName = "schedule.json"

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatICS:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'json', 'yaml' or 'ics')", s)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".ics":
		return FormatICS
	default:
		return FormatJSON
	}
}

// FileName returns the default schedule file name for a format
func FileName(format Format) string {
	return "schedule." + string(format)
}

// ExpandPath expands a leading ~/ to the home directory
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
	}
	return path, nil
}

// OutputPath returns where the extractor writes: dir joined with the format's file
// name. An empty dir means the current directory. The directory is created if needed.
func OutputPath(dir string, format Format) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	dir, err := ExpandPath(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return filepath.Join(dir, FileName(format)), nil
}

// Encode writes s to w in the given format
func Encode(w io.Writer, s *schedule.Schedule, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		return enc.Encode(s)
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(s, time.Now()))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// Decode reads a schedule in the given format
func Decode(r io.Reader, format Format) (*schedule.Schedule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}

	s := schedule.New()
	switch format {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, fmt.Errorf("parsing schedule: empty file")
		}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing schedule: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing schedule: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot read %s schedules", format)
	}
	return s, nil
}

// Save writes s to path, choosing the encoding from the extension.
func Save(path string, s *schedule.Schedule) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, s, FormatFromPath(path)); err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing schedule: %w", err)
	}
	return nil
}

// Load reads and validates the schedule at path.
func Load(path string) (*schedule.Schedule, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}
	defer f.Close()

	return Decode(f, FormatFromPath(path))
}
