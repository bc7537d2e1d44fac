// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests using it carry the "integration" build tag
// and are skipped when no database URL is configured.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//		state, db := testdb.Connect(t)
//		testdb.Reset(t, db)
//		tasks := postgres.NewPostgresTaskStore(state)
//		...
//	}
package testdb
