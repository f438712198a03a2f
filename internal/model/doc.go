// Package model defines the data structures shared across catalogscan:
// terms and their code/name derivation, course references and payloads,
// classified fetch outcomes, and the per-term dataset written to disk.
//
// The package has no knowledge of HTTP or storage. Other packages import it
// to avoid cycles between the scraper, the catalog client and persistence.
package model
