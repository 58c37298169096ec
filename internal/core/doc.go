// Package core provides the business logic for the person record table.
//
// The package has no transport dependencies. The web handlers and the CLI
// both drive the same [Service], which sits on top of a [Store].
//
// # Listing
//
// [Service.List] filters, counts, sorts and paginates in that order. The
// total returned alongside a page is always the count of every match, so a
// page past the end is empty while the total is not.
//
// Search is an exact, case-sensitive substring test on name and email, plus
// an equality test on id when the term parses as an integer. Sorting is
// restricted to a whitelist of columns:
//
//	id, name, email
//
// # Mutations
//
// Create, Update and Delete each run in their own transaction. Update is
// partial: only fields present in the request are written.
// [Service.BatchDelete] is all-or-nothing; any failure is rolled back and
// surfaced as an [InternalError].
//
// # CSV
//
// [Service.ImportCSV] discards the first row as a header, skips rows with
// fewer than two columns and inserts the rest in a single transaction.
// [Service.ExportCSV] serializes the current page only, as name and email
// columns. Imports are bounded by an [ImportLimiter]; a request that cannot
// get a slot in time fails with [ErrTooManyImports].
//
// # Error Handling
//
// Errors are mapped to user-facing messages with [MapError]. Each category
// carries a code for support reference:
//
//   - VAL001-VAL003: Validation errors (missing fields, file, sort field)
//   - REC001: Record not found
//   - ERR500: Batch operation failed
//   - IMP001: Import slots exhausted
//   - ERR000: Unexpected error
package core
