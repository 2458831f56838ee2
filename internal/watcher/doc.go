// Package watcher drives the pipeline from the filesystem: new spreadsheets
// appearing in the input directory are processed and their JSON artifacts
// written to the output directory, mirroring a storage-trigger deployment.
package watcher
