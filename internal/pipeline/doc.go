// Package pipeline orchestrates the ESG document flow: raw bytes go through
// the analysis engine, the result is normalized into the structured document
// representation, and the esg package's scanner and extractor populate the
// categorized metrics. Data flows strictly forward; each invocation is
// independent and stateless.
package pipeline
