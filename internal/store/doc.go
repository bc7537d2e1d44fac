// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Task operations always take the owning user's ID. There is no way to
// reach a task through this package without naming its owner.
//
// ConnectionState tracks whether the backing database is usable. Store
// implementations consult it before every operation and fail fast with
// ErrStoreUnavailable while it is not connected.
package store
