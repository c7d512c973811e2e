// Package plist loads XML property lists into a tree that keeps keys and
// values apart, exactly as they appear in the document.
//
// Most plist readers pair each <key> with the element that follows it. This
// package does not: a Dict records its keys as one ordered list and its
// values grouped by element name ("string", "integer", "date", ...), each
// group in document order. Nested dicts and arrays are kept in their own
// ordered lists. That is the shape the dictdecode package works against.
//
// Parse streams the document with encoding/xml, so memory use is bounded by
// the size of the resulting tree rather than the raw text. Documents in
// encodings other than UTF-8 are transcoded on the fly.
package plist
