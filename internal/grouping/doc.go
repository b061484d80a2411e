// Package grouping sorts a batch of emails into three buckets by matching the
// sender against an ordered list of category patterns.
//
// Low-priority categories (newsletters, community digests) collapse into a
// single count per category. High-priority categories (close contacts,
// daycare, school) are surfaced individually so each one can get a suggested
// next step. Everything else is left ungrouped and summarized on its own.
//
// Categories are evaluated in order and the first match wins. The built-in
// low-priority categories always come first, followed by configured
// categories in declaration order.
package grouping
