package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

type fakeRow struct {
	scanErr error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scanErr
}

type recordingDB struct {
	lookupErr error
	execErr   error

	execSQL  []string
	execArgs [][]any
}

func (f *recordingDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)

	return pgconn.CommandTag{}, f.execErr
}

func (f *recordingDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (f *recordingDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{scanErr: f.lookupErr}
}

func seedConfig() config.Config {
	return config.Config{BcryptCost: bcrypt.MinCost}
}

func countByTable(sqls []string, table string) int {
	n := 0

	for _, s := range sqls {
		if strings.Contains(s, "INSERT INTO "+table) {
			n++
		}
	}

	return n
}

func TestSeedDemoData_PopulatesEmptyDatabase(t *testing.T) {
	q := &recordingDB{lookupErr: pgx.ErrNoRows}

	err := SeedDemoData(context.Background(), q, seedConfig())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := countByTable(q.execSQL, "users"); got != 2 {
		t.Fatalf("got %d user inserts, want 2", got)
	}

	if got := countByTable(q.execSQL, "projects"); got != 2 {
		t.Fatalf("got %d project inserts, want 2", got)
	}

	if got := countByTable(q.execSQL, "tasks"); got != 3 {
		t.Fatalf("got %d task inserts, want 3", got)
	}

	roles := map[string]bool{}

	for i, s := range q.execSQL {
		if strings.Contains(s, "INSERT INTO users") {
			// (id, email, username, password_hash, role, ...)
			roles[q.execArgs[i][4].(string)] = true
		}
	}

	if !roles[user.DefaultRole] || !roles[user.AdminRole] {
		t.Fatalf("seeded roles %v, want both %q and %q", roles, user.DefaultRole, user.AdminRole)
	}
}

func TestSeedDemoData_ProjectsBelongToTestUser(t *testing.T) {
	q := &recordingDB{lookupErr: pgx.ErrNoRows}

	if err := SeedDemoData(context.Background(), q, seedConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var testUserID string

	for i, s := range q.execSQL {
		if strings.Contains(s, "INSERT INTO users") && q.execArgs[i][1] == "test@example.com" {
			testUserID = q.execArgs[i][0].(string)
		}
	}

	if testUserID == "" {
		t.Fatalf("test user insert not found")
	}

	for i, s := range q.execSQL {
		if strings.Contains(s, "INSERT INTO projects") {
			// (id, owner_id, ...)
			if q.execArgs[i][1] != testUserID {
				t.Fatalf("project owned by %v, want the test user", q.execArgs[i][1])
			}
		}

		if strings.Contains(s, "INSERT INTO tasks") {
			// (id, project_id, owner_id, ...)
			if q.execArgs[i][2] != testUserID {
				t.Fatalf("task owned by %v, want the test user", q.execArgs[i][2])
			}
		}
	}
}

func TestSeedDemoData_SkipsWhenAlreadySeeded(t *testing.T) {
	q := &recordingDB{lookupErr: nil}

	err := SeedDemoData(context.Background(), q, seedConfig())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(q.execSQL) != 0 {
		t.Fatalf("seeding ran %d inserts against an already seeded database", len(q.execSQL))
	}
}

func TestSeedDemoData_LookupErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	q := &recordingDB{lookupErr: boom}

	err := SeedDemoData(context.Background(), q, seedConfig())

	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want the lookup error", err)
	}

	if len(q.execSQL) != 0 {
		t.Fatalf("inserts ran after a failed lookup")
	}
}

func TestSeedDemoData_InsertErrorStops(t *testing.T) {
	boom := errors.New("constraint violation")
	q := &recordingDB{lookupErr: pgx.ErrNoRows, execErr: boom}

	err := SeedDemoData(context.Background(), q, seedConfig())

	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want the insert error", err)
	}

	if len(q.execSQL) != 1 {
		t.Fatalf("got %d inserts after the first failure, want 1", len(q.execSQL))
	}
}
