// Package ingestion validates raw translation tuples and persists them as
// entries. File format decoding happens upstream; this package only sees
// already-decoded (source, target, context) tuples.
package ingestion
