package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

var fixedNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

type dbCall struct {
	sql  string
	args []any
}

// fakeDB answers QueryRow calls from a queue and records every statement.
type fakeDB struct {
	calls []dbCall

	rows     []fakeRow
	queryRes [][]any
	queryErr error
	execTag  string
	execErr  error
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.calls = append(db.calls, dbCall{sql: sql, args: args})
	return pgconn.NewCommandTag(db.execTag), db.execErr
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.calls = append(db.calls, dbCall{sql: sql, args: args})
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	return &fakeRows{rows: db.queryRes}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.calls = append(db.calls, dbCall{sql: sql, args: args})
	if len(db.rows) == 0 {
		return fakeRow{err: errors.New("unexpected query")}
	}
	row := db.rows[0]
	db.rows = db.rows[1:]
	return row
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: got %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return fakeRow{values: r.rows[r.idx-1]}.Scan(dest...)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx-1], nil
}

// taskRow is a full task row in taskColumns order.
func taskRow(id int64, title, status string, dueDate *time.Time) fakeRow {
	return fakeRow{values: []any{
		id, title, "notes", status, models.PriorityMedium, dueDate,
		fixedNow.Add(-time.Hour), fixedNow.Add(-time.Hour),
	}}
}

type fakeUserService struct {
	mu        sync.Mutex
	users     map[string]*models.User
	createErr error
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{users: make(map[string]*models.User)}
}

func (s *fakeUserService) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserService) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserService) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *fakeUserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (s *fakeUserService) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeBlacklist struct {
	mu     sync.Mutex
	tokens map[string]*models.BlacklistedToken
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{tokens: make(map[string]*models.BlacklistedToken)}
}

func (b *fakeBlacklist) Add(_ context.Context, token *models.BlacklistedToken) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tokens[token.JTI]; ok {
		return ErrTokenBlacklisted
	}
	b.tokens[token.JTI] = token
	return nil
}

func (b *fakeBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tokens[jti]
	return ok, nil
}

func (b *fakeBlacklist) FlushExpired(_ context.Context, now time.Time) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for jti, token := range b.tokens {
		if token.ExpiresAt.Before(now) {
			delete(b.tokens, jti)
			n++
		}
	}
	return n, nil
}
