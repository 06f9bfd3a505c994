// Package database keeps a SQLite catalog of the files the subsystem writes:
// content-addressed assets (temp and permanent) and generated thumbnails.
//
// The catalog is bookkeeping only. The filesystem stays the source of truth,
// so a lost or disabled catalog never changes what is served; it feeds the
// stats command and the inventory gauges.
//
// The database uses WAL mode so the metrics collector can read while
// workers record new entries.
package database
