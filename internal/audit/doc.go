// Package audit keeps a JSONL log of the searches run against a data
// directory.
package audit
