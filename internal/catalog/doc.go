// Package catalog talks to the upstream course catalog over HTTP.
//
// Client implements both discovery.Lister and scrape.DetailFetcher. Page
// locations come from path templates and fields are pulled out with CSS
// selectors, both taken from config.Catalog, so a new catalog layout
// needs configuration rather than code. Non-200 responses are returned
// as *model.StatusError and left for the caller to classify.
package catalog
