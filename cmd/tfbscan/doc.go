// Package tfbscan provides the command-line interface for tfbscan. It
// configures subcommands (scan, serve, fetch, motif, history, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/tfbscan/tfbscan/cmd/tfbscan"
//	func main() { tfbscan.Execute() }
package tfbscan
