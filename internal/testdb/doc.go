//go:build integration

// Package testdb provides helpers for PostgreSQL integration tests.
//
// Each test runs inside its own transaction, which is rolled back when the
// test completes, so tests may run in parallel against one database without
// cleanup:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//	        tasks := postgres.NewPostgresTaskStore(tx, nil)
//	        ...
//	    })
//	}
//
// The connection string is read from TRACKER_TEST_DB_URL, then DATABASE_URL.
// Tests are skipped when neither is set.
package testdb
