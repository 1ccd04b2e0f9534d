// Package main provides the entry point for the aeoscan CLI.
//
// aeoscan is an answer-engine-optimization audit tool for websites.
// It crawls a site politely, scores its pages against an AEO rubric,
// and captures redacted evidence supporting each finding.
//
// Usage:
//
//	aeoscan scan <domain>
//	aeoscan purge --days 30
//	aeoscan history <domain>
//
// See --help for all available options.
package main

// main is the entry point for aeoscan.
func main() {
	Execute()
}
