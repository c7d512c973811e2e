// Command libimport decodes iTunes library XML exports and stores them in
// the library database.
//
// Usage:
//
//	libimport decode <file> [--offset N] [--limit N] [--format json|yaml] [--section all|info|tracks|playlists]
//	libimport store <file>... [--db path] [--lock-timeout 10s]
//	libimport version
//
// decode prints the decoded library. Use "-" to read the document from
// standard input. JSON output is indented when standard output is a
// terminal.
//
// store imports each file into the SQLite database, skipping files whose
// content is unchanged since their last import. The database defaults to
// $DATABASE_DIR/library.db.
//
// Exit status is 2 when a file cannot be read or is not a property list,
// 3 when a record does not match its schema, 4 when a value cannot be
// converted, and 1 for any other failure.
package main
