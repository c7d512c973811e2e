// Package dictdecode decodes property-list dict nodes into typed records.
//
// A plist dict lists its keys as one ordered sequence and its values grouped
// by element type: every <string> together, every <integer> together, every
// <date> together. The only link between a key and its value is the order in
// which the producer emitted them. A Schema makes that order explicit:
//
//	schema := dictdecode.Schema{
//	    {Name: "track_id", Key: "Track ID", Kind: dictdecode.Integer},
//	    {Name: "name", Key: "Name", Kind: dictdecode.String},
//	    {Name: "podcast", Key: "Podcast", Kind: dictdecode.PresenceFlag},
//	}
//
// Decode walks the schema in order with one cursor per value kind. The key
// list is consulted for presence only; position always comes from the
// schema. A present key whose cursor runs past the end of its value sequence
// fails the whole record with ErrSchemaMismatch.
//
// Decoding is a pure function of the node and the schema. It performs no I/O
// and holds no state, so records may be decoded from any goroutine.
package dictdecode
