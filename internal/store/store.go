package store

import (
	"context"
	"database/sql"
	errs "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tylersense-ui/Bitburner-Scripts/internal/targets"
	"github.com/tylersense-ui/Bitburner-Scripts/internal/util"
)

var (
	ErrNoChange   = errs.New("no change")
	ErrNoSnapshot = errs.New("no published snapshot")
)

// DB wraps gorm.DB for repositories and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error { return d.sql.Close() }

// Open connects to DB per config.
func Open(ctx context.Context, cfg util.Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, wrap(err, "open postgres")
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(4)
	sdb.SetMaxIdleConns(2)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, wrap(err, "ping postgres")
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// WithTx executes fn within a database transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.gorm.WithContext(ctx).Transaction(fn)
}

// Published is a snapshot read back from the database.
type Published struct {
	ID        uuid.UUID
	Version   string
	CreatedAt time.Time
	Table     targets.Snapshot
}

type targetRow struct {
	Tier     string
	Position int
	Host     string
}

type settingRow struct {
	Group string
	Key   string
	Value float64
}

// rowsFromTable flattens a snapshot into insert rows, tiers and keys in
// declaration order.
func rowsFromTable(snap targets.Snapshot) ([]targetRow, []settingRow) {
	var trs []targetRow
	for _, t := range targets.AllTiers {
		for i, h := range snap.Targets[t] {
			trs = append(trs, targetRow{Tier: string(t), Position: i, Host: h})
		}
	}
	var srs []settingRow
	for _, g := range targets.AllSettingGroups {
		for _, k := range targets.KeysFor(g) {
			v, ok := snap.Settings[g][k]
			if !ok {
				continue
			}
			srs = append(srs, settingRow{Group: string(g), Key: string(k), Value: v})
		}
	}
	return trs, srs
}

// tableFromRows is the inverse of rowsFromTable. Target rows of one tier must
// arrive in position order.
func tableFromRows(trs []targetRow, srs []settingRow) targets.Snapshot {
	snap := targets.Snapshot{
		Targets:  map[targets.Tier][]string{},
		Settings: map[targets.SettingGroup]map[targets.SettingKey]float64{},
	}
	for _, r := range trs {
		t := targets.Tier(r.Tier)
		snap.Targets[t] = append(snap.Targets[t], r.Host)
	}
	for _, r := range srs {
		g := targets.SettingGroup(r.Group)
		if snap.Settings[g] == nil {
			snap.Settings[g] = map[targets.SettingKey]float64{}
		}
		snap.Settings[g][targets.SettingKey(r.Key)] = r.Value
	}
	return snap
}

// SnapshotRepo publishes the built-in table so non-Go consumers can read it.
type SnapshotRepo struct{ db *DB }

func NewSnapshotRepo(db *DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// Publish writes the current table as a new snapshot in one transaction.
func (r *SnapshotRepo) Publish(ctx context.Context, version string) (uuid.UUID, error) {
	id := uuid.New()
	trs, srs := rowsFromTable(targets.Table())
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec(`INSERT INTO snapshots(id, version) VALUES (?,?)`, id, version).Error; err != nil {
			return wrap(err, "insert snapshot")
		}
		for _, row := range trs {
			if err := tx.Exec(`INSERT INTO snapshot_targets(snapshot_id, tier, position, host) VALUES (?,?,?,?)`, id, row.Tier, row.Position, row.Host).Error; err != nil {
				return wrap(err, "insert target")
			}
		}
		for _, row := range srs {
			if err := tx.Exec(`INSERT INTO snapshot_settings(snapshot_id, grp, key, value) VALUES (?,?,?,?)`, id, row.Group, row.Key, row.Value).Error; err != nil {
				return wrap(err, "insert setting")
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	log.Debug("published snapshot", "id", id, "targets", len(trs), "settings", len(srs))
	return id, nil
}

// seq is assigned at insert, so it orders publishes that share a created_at.
const latestSnapshotQuery = `SELECT id, version, created_at FROM snapshots ORDER BY seq DESC LIMIT 1`

// Latest reads back the most recently published snapshot.
func (r *SnapshotRepo) Latest(ctx context.Context) (Published, error) {
	g := r.db.gorm.WithContext(ctx)
	var p Published
	row := g.Raw(latestSnapshotQuery).Row()
	if err := row.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
		if errs.Is(err, sql.ErrNoRows) {
			return Published{}, ErrNoSnapshot
		}
		return Published{}, wrap(err, "load snapshot")
	}
	var trs []targetRow
	rows, err := g.Raw(`SELECT tier, position, host FROM snapshot_targets WHERE snapshot_id = ? ORDER BY tier, position`, p.ID).Rows()
	if err != nil {
		return Published{}, wrap(err, "load targets")
	}
	defer rows.Close()
	for rows.Next() {
		var tr targetRow
		if err := rows.Scan(&tr.Tier, &tr.Position, &tr.Host); err != nil {
			return Published{}, err
		}
		trs = append(trs, tr)
	}
	if err := rows.Err(); err != nil {
		return Published{}, err
	}
	var srs []settingRow
	srows, err := g.Raw(`SELECT grp, key, value FROM snapshot_settings WHERE snapshot_id = ?`, p.ID).Rows()
	if err != nil {
		return Published{}, wrap(err, "load settings")
	}
	defer srows.Close()
	for srows.Next() {
		var sr settingRow
		if err := srows.Scan(&sr.Group, &sr.Key, &sr.Value); err != nil {
			return Published{}, err
		}
		srs = append(srs, sr)
	}
	if err := srows.Err(); err != nil {
		return Published{}, err
	}
	p.Table = tableFromRows(trs, srs)
	return p, nil
}

// Helper error wrap
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
