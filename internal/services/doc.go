// Package services contains the application services sitting between the
// transport layer and the processing pipeline: document processing with
// metrics and event broadcasting, and dependency health reporting.
package services
