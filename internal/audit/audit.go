// internal/audit/audit.go
//
// Audit trail of console mutations.
//
// Context
// -------
// Every successful create, update, or delete issued through the console is
// recorded with who did it, from where, and which slug was involved.  The
// table lives in MySQL and is optional: with no DSN configured the Nop
// recorder is used.  A failed write is logged and never fails the save that
// triggered it.
//
// Schema
// ------
//
//	CREATE TABLE console_audit (
//	  id         BIGINT AUTO_INCREMENT PRIMARY KEY,
//	  at         DATETIME(3)  NOT NULL,
//	  user_id    VARCHAR(64)  NOT NULL,
//	  username   VARCHAR(255) NOT NULL,
//	  action     VARCHAR(16)  NOT NULL,
//	  entity     VARCHAR(32)  NOT NULL,
//	  entity_id  BIGINT       NOT NULL,
//	  slug       VARCHAR(255) NOT NULL DEFAULT '',
//	  ip         VARCHAR(64)  NOT NULL DEFAULT '',
//	  browser    VARCHAR(64)  NOT NULL DEFAULT '',
//	  KEY idx_at (at)
//	);

package audit

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/catalog-console/internal/auth"
	"github.com/yanizio/catalog-console/internal/logger"
	"github.com/yanizio/catalog-console/internal/requestinfo"
)

// Actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

const writeTimeout = 3 * time.Second

// Entry is one audit row.
type Entry struct {
	ID       int64     `db:"id"        json:"id"`
	At       time.Time `db:"at"        json:"at"`
	UserID   string    `db:"user_id"   json:"userId"`
	Username string    `db:"username"  json:"username"`
	Action   string    `db:"action"    json:"action"`
	Entity   string    `db:"entity"    json:"entity"`
	EntityID int64     `db:"entity_id" json:"entityId"`
	Slug     string    `db:"slug"      json:"slug,omitempty"`
	IP       string    `db:"ip"        json:"ip,omitempty"`
	Browser  string    `db:"browser"   json:"browser,omitempty"`
}

// Recorder stores entries.
type Recorder interface {
	Record(ctx context.Context, e Entry)
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// NewEntry fills At, the user, and the client details from ctx.
func NewEntry(ctx context.Context, action, entity string, entityID int64, slug string) Entry {
	e := Entry{
		At:       time.Now().UTC(),
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Slug:     slug,
	}
	if u, ok := auth.UserFrom(ctx); ok {
		e.UserID, e.Username = u.ID, u.Username
	}
	if info := requestinfo.FromContext(ctx); info != nil {
		if info.Geo.IP != nil {
			e.IP = info.Geo.IP.String()
		}
		e.Browser = info.UA.Browser
	}
	return e
}

/*──────────────────────────── nop ─────────────────────────────────────────*/

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry)                {}
func (Nop) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

/*──────────────────────────── sql ─────────────────────────────────────────*/

// SQL writes entries to console_audit.
type SQL struct {
	db *sqlx.DB
}

// NewSQL returns a recorder on db.
func NewSQL(db *sqlx.DB) *SQL { return &SQL{db: db} }

const insertQ = `INSERT INTO console_audit
  (at, user_id, username, action, entity, entity_id, slug, ip, browser)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Record inserts e.  The write outlives a cancelled request but is bounded
// by its own timeout.
func (s *SQL) Record(ctx context.Context, e Entry) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	_, err := s.db.ExecContext(wctx, insertQ,
		e.At, e.UserID, e.Username, e.Action, e.Entity, e.EntityID, e.Slug, e.IP, e.Browser)
	if err != nil {
		logger.FromContext(ctx).Warnw("audit write failed",
			"action", e.Action, "entity", e.Entity, "entity_id", e.EntityID, "err", err)
	}
}

const recentQ = `SELECT id, at, user_id, username, action, entity, entity_id, slug, ip, browser
  FROM console_audit ORDER BY at DESC, id DESC LIMIT ?`

// Recent returns the newest entries, at most limit (1..500).
func (s *SQL) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}
	out := []Entry{}
	if err := s.db.SelectContext(ctx, &out, recentQ, limit); err != nil {
		return nil, err
	}
	return out, nil
}
