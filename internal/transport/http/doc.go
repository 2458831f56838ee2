// Package http provides the HTTP transport layer: the health surface, the
// document processing endpoint, the Prometheus scrape endpoint, and the
// websocket event feed, all mounted on a chi router.
package http
