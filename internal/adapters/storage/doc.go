// Package storage provides ports.SlotStore implementations.
//
// Three drivers are available:
//   - file: one file per slot under a directory, replaced atomically
//   - sqlite: a single slots table in a SQLite database (modernc.org/sqlite)
//   - memory: process-local, used for session slots and tests
//
// Every store also implements ports.HealthChecker under the name "storage".
package storage
