package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPostgresWithMock(t *testing.T, clock *fakeClock) (*PostgresCache, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	c := NewPostgresCache(db, Options{TTL: time.Hour, Now: clock.Now})
	return c, mock, func() { _ = db.Close() }
}

func TestPostgresCacheGetMissOnNoRows(t *testing.T) {
	c, mock, done := newPostgresWithMock(t, newClock())
	defer done()

	mock.ExpectQuery("SELECT payload, stored_at FROM llm_response_cache").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, ok := c.Get(context.Background(), "missing"); ok {
		t.Fatalf("expected miss")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresCacheGetHitWithinTTL(t *testing.T) {
	clock := newClock()
	c, mock, done := newPostgresWithMock(t, clock)
	defer done()

	rows := sqlmock.NewRows([]string{"payload", "stored_at"}).
		AddRow(`{"a":1}`, clock.now.Add(-10*time.Minute))
	mock.ExpectQuery("SELECT payload, stored_at FROM llm_response_cache").
		WithArgs("k").
		WillReturnRows(rows)

	got, ok := c.Get(context.Background(), "k")
	if !ok || got != `{"a":1}` {
		t.Fatalf("expected hit, got %q ok=%v", got, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresCacheGetDeletesExpiredRow(t *testing.T) {
	clock := newClock()
	c, mock, done := newPostgresWithMock(t, clock)
	defer done()

	rows := sqlmock.NewRows([]string{"payload", "stored_at"}).
		AddRow("stale", clock.now.Add(-time.Hour))
	mock.ExpectQuery("SELECT payload, stored_at FROM llm_response_cache").
		WithArgs("k").
		WillReturnRows(rows)
	mock.ExpectExec("DELETE FROM llm_response_cache WHERE key").
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Fatalf("expected miss for expired row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresCacheSetUpserts(t *testing.T) {
	clock := newClock()
	c, mock, done := newPostgresWithMock(t, clock)
	defer done()

	mock.ExpectExec("INSERT INTO llm_response_cache").
		WithArgs("k", clock.now.UTC(), "payload").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := c.Set(context.Background(), "k", "payload"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresCachePruneDeletesByCutoff(t *testing.T) {
	clock := newClock()
	c, mock, done := newPostgresWithMock(t, clock)
	defer done()

	mock.ExpectExec("DELETE FROM llm_response_cache WHERE stored_at").
		WithArgs(clock.now.Add(-time.Hour).UTC()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := c.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
