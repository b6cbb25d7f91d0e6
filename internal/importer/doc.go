// Package importer replicates a schedule into two Notion databases: one page per class
// in the classes database and one page per meeting in the sessions database, each
// session linked to its class.
//
// The import runs strictly in order and stops at the first failed request. Pages
// created before the failure stay in Notion, and importing the same file twice
// creates every session twice.
package importer
