// Package notion is a small client for the parts of the Notion REST API the importer
// uses: creating pages in a database and querying every page of a database.
//
// Client talks to the live API. DryRunStore has the same methods but only prints the
// pages it would create, which is what --dry-run uses.
package notion
