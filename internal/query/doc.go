// Package query scans the projection family, filters entries with a
// Predicate and renders matching keys as identifiers. Entries that fail to
// decode are reported per record and never abort the scan.
package query
