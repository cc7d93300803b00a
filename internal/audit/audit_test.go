package audit

import (
	"context"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/requestinfo"
)

func newMock(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQL(sqlx.NewDb(db, "mysql")), mock
}

func TestNewEntry_FromContext(t *testing.T) {
	ctx := auth.WithUser(context.Background(), auth.User{ID: "u1", Username: "ann"})
	ctx = requestinfo.WithInfo(ctx, &requestinfo.RequestInfo{
		UA:  requestinfo.UA{Browser: "Firefox"},
		Geo: requestinfo.Geo{IP: net.ParseIP("10.0.0.7")},
	})

	e := NewEntry(ctx, ActionCreate, "product", 42, "kefir")
	if e.UserID != "u1" || e.Username != "ann" || e.IP != "10.0.0.7" || e.Browser != "Firefox" {
		t.Fatalf("entry = %+v", e)
	}
	if e.At.IsZero() || e.EntityID != 42 || e.Slug != "kefir" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestSQL_Record(t *testing.T) {
	rec, mock := newMock(t)
	e := Entry{At: time.Unix(0, 0).UTC(), UserID: "u1", Username: "ann",
		Action: ActionUpdate, Entity: "category", EntityID: 3, Slug: "milk"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO console_audit")).
		WithArgs(e.At, "u1", "ann", ActionUpdate, "category", int64(3), "milk", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec.Record(context.Background(), e)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQL_RecordFailureIsSwallowed(t *testing.T) {
	rec, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO console_audit")).
		WillReturnError(errors.New("disk full"))

	rec.Record(context.Background(), Entry{Action: ActionDelete, Entity: "branch", EntityID: 1})
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQL_Recent(t *testing.T) {
	rec, mock := newMock(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cols := []string{"id", "at", "user_id", "username", "action", "entity", "entity_id", "slug", "ip", "browser"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM console_audit ORDER BY at DESC, id DESC LIMIT ?")).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, at, "u1", "ann", "create", "product", 9, "kefir", "10.0.0.1", "Chrome"))

	got, err := rec.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "kefir" || !got[0].At.Equal(at) {
		t.Fatalf("got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.Record(context.Background(), Entry{})
	got, err := r.Recent(context.Background(), 10)
	if err != nil || len(got) != 0 {
		t.Fatalf("Nop.Recent = %v, %v", got, err)
	}
}
