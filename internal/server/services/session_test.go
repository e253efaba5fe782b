package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkoroban/scoreboard/internal/common"
	"github.com/dkoroban/scoreboard/internal/server/auth"
	"github.com/dkoroban/scoreboard/internal/server/models"
	"github.com/dkoroban/scoreboard/internal/server/repositories/repomanager"
	sessionsrepo "github.com/dkoroban/scoreboard/internal/server/repositories/sessions"
	"github.com/google/uuid"
)

func TestSessionCreate_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	u := &fakeUsersRepo{}
	sess := &fakeSessionsRepo{}
	s := NewSessionService(db, &fakeRepoManager{u: u, s: sess}, testConfig())

	created, token, err := s.Create(context.Background(), 7, true)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("session id is not a uuid: %q", created.ID)
	}
	if created.UserID != 7 {
		t.Fatalf("unexpected session: %+v", created)
	}
	if created.TokenReference != common.HashTokenReference(token) {
		t.Fatal("token reference must be the token digest")
	}

	identity, err := auth.ParseToken(token, []byte("k"))
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if identity.UserID != 7 || !identity.IsAdmin {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if len(sess.inserted) != 1 || sess.inserted[0].ID != created.ID {
		t.Fatalf("expected one inserted session row, got %+v", sess.inserted)
	}
	if len(u.appendedIDs) != 1 || u.appendedIDs[0] != created.ID {
		t.Fatalf("expected the session id appended to the user set, got %v", u.appendedIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}

func TestSessionCreate_AppendFailureRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	u := &fakeUsersRepo{appendErr: errors.New("append failed")}
	sess := &fakeSessionsRepo{}
	s := NewSessionService(db, &fakeRepoManager{u: u, s: sess}, testConfig())

	_, _, err := s.Create(context.Background(), 7, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}

func TestSessionDestroy_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	u := &fakeUsersRepo{}
	sess := &fakeSessionsRepo{deleteOut: &models.Session{ID: "s-1", UserID: 7}}
	s := NewSessionService(db, &fakeRepoManager{u: u, s: sess}, testConfig())

	deleted, err := s.Destroy(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Destroy error: %v", err)
	}
	if deleted.UserID != 7 {
		t.Fatalf("unexpected session: %+v", deleted)
	}
	if len(u.removedIDs) != 1 || u.removedIDs[0] != "s-1" {
		t.Fatalf("expected session id removed from the user set, got %v", u.removedIDs)
	}
}

func TestSessionDestroy_NotFoundRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	u := &fakeUsersRepo{}
	sess := &fakeSessionsRepo{deleteErr: sessionsrepo.ErrNotFound}
	s := NewSessionService(db, &fakeRepoManager{u: u, s: sess}, testConfig())

	_, err := s.Destroy(context.Background(), "ghost")
	if !errors.Is(err, sessionsrepo.ErrNotFound) {
		t.Fatalf("want sessionsrepo.ErrNotFound, got %v", err)
	}
	if len(u.removedIDs) != 0 {
		t.Fatal("user set must not be touched when the row is missing")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}

// Exercises the real Postgres repositories end to end: two logins for the
// same user race, and each transaction must carry both its session insert
// and the matching session_ids append before committing.
func TestSessionCreate_ConcurrentLoginsStayConsistent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	qInsert := `(?s)^\s*INSERT\s+INTO\s+sessions`
	qAppend := `(?s)^\s*UPDATE\s+users\s+SET\s+session_ids\s*=\s*session_ids\s*\|\|`

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(qInsert).
			WithArgs(sqlmock.AnyArg(), int64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(qAppend).
			WithArgs(sqlmock.AnyArg(), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	m := repomanager.NewPostgresRepositoryManager()
	s := NewSessionService(db, m, testConfig())

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Create(context.Background(), 7, false)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}

func TestSessionService_StoreTimeoutApplied(t *testing.T) {
	if _, cancel := withStoreTimeout(context.Background(), 0); cancel == nil {
		t.Fatal("cancel must not be nil for a zero timeout")
	}
	ctx, cancel := withStoreTimeout(context.Background(), time.Second)
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected a deadline on the store context")
	}
}
