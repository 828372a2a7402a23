// Package storage is the relational store adapter for users and tasks.
//
// It runs on bun over either sqlite (mattn/go-sqlite3) or postgres (lib/pq).
// Finds report absence through a found flag instead of an error. Every call is
// bounded by Config.QueryTimeout. Unique violations raised by either driver
// are reported as *DuplicateError so callers can tell a lost race on username
// or email apart from an infrastructure failure.
package storage
