// Package storage reads and writes schedule files.
//
// The file format follows the extension: .json (default, indented), .yaml/.yml, or .ics for
// a calendar export that cannot be read back. Paths may start with ~/ for the home directory.
package storage
