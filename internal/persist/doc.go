// Package persist writes scrape output to disk.
//
// JSONWriter stores one dataset file per term plus an index of the terms
// written. Files are replaced atomically, so a reader never sees a half
// written dataset, and every write reports the SHA3-256 digest of the
// bytes it stored. MarkdownWriter renders a human-readable run summary.
package persist
