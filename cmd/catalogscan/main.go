// Package main provides the entry point for the catalogscan CLI.
//
// catalogscan indexes a university course catalog term by term. It walks
// every subject of a term, fetches each course's detail page at a polite
// pace and writes one compact JSON dataset per term plus an index of the
// datasets produced.
//
// Usage:
//
//	catalogscan scrape --base-url https://catalog.example.edu
//	catalogscan scrape --terms 2025/fall,2025/summer
//	catalogscan terms
//	catalogscan history
//
// See --help for all available options.
package main

// main is the entry point for catalogscan.
func main() {
	Execute()
}
