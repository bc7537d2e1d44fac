// Package postgres provides PostgreSQL implementations of the store
// interfaces, the schema migrations, and the Connector that brings the
// database connection up with bounded retries and watches it afterwards.
//
// Stores never hold a *sql.DB of their own. They ask the shared
// store.ConnectionState for the handle on each call, so they start
// failing with store.ErrStoreUnavailable the moment the connection is
// lost and recover when it comes back.
package postgres
