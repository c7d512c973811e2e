// Package indexer keeps the database in step with the configured library
// XML files.
//
// The indexer operates in three modes:
//   - Initial sync: started in the background by Start
//   - Periodic sync: every SYNC_INTERVAL until Stop
//   - Manual trigger: TriggerSync, used by POST /api/sync
//
// Each sync fingerprints every file (BLAKE2b-256) and skips files whose
// fingerprint matches the one stored with their last import. Changed files
// are imported concurrently through library.ImportAll and each stored in
// its own transaction. One file failing does not stop the others.
package indexer
