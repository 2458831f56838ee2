// Package esg implements the ESG signal extraction core: keyword scanning
// over a document's combined text, numeric metric extraction from table
// columns with category-matching headers, and unit guessing for raw cell
// values.
//
// # Matching model
//
// All matching is literal, case-insensitive substring containment against
// static keyword lists. The category priority order (environmental, social,
// governance) and the per-category keyword order determine finding order and
// resolve headers that match more than one category. This is intentionally
// not an NLP system.
//
// # Known limitations
//
// Row 0 of every table is treated as the header row, so tables without a
// semantic header row have their first data row read as headers. The numeric
// token pattern does not understand thousands separators: "1,000" yields the
// token "1". Both behaviors are preserved deliberately; consumers of the
// output depend on them.
package esg
