// Package report renders search results: the JSON response shape shared by
// the CLI and the HTTP service, plus table and text renderers for terminals.
package report
