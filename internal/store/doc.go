// Package store declares the persistence contracts for users, tasks,
// comments and notifications, plus the Transactor used to group writes.
// Implementations live in internal/platform/postgres; services only see
// these interfaces and the sentinel errors in errors.go.
package store
