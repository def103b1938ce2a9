// Package cache stores search results keyed by a hash of everything that
// determines them: motif, scan parameters, sequence ids and promoter contents.
package cache
