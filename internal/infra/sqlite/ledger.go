package sqlite

import (
	"github.com/momentum-app/momentum/internal/domain"
)

// ─── XP Ledger ──────────────────────────────────────────────────────────────

// InsertXPEvent appends an award to the ledger and returns its id.
func (d *DB) InsertXPEvent(ev domain.XPEvent) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO xp_ledger (timestamp, source, ref_id, amount, total)
		 VALUES (?, ?, ?, ?, ?)`,
		toMillis(ev.At), string(ev.Source), ev.RefID, ev.Amount, ev.Total,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListXPEvents returns the most recent awards, newest first.
func (d *DB) ListXPEvents(limit int) ([]domain.XPEvent, error) {
	rows, err := d.db.Query(
		`SELECT id, timestamp, source, ref_id, amount, total
		 FROM xp_ledger ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.XPEvent{}
	for rows.Next() {
		var ev domain.XPEvent
		var ts int64
		if err := rows.Scan(&ev.ID, &ts, &ev.Source, &ev.RefID, &ev.Amount, &ev.Total); err != nil {
			return nil, err
		}
		ev.At = fromMillis(ts)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// XPEarnedBySource sums the ledger per source.
func (d *DB) XPEarnedBySource() (map[domain.XPSource]int64, error) {
	rows, err := d.db.Query(`SELECT source, SUM(amount) FROM xp_ledger GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.XPSource]int64)
	for rows.Next() {
		var src domain.XPSource
		var sum int64
		if err := rows.Scan(&src, &sum); err != nil {
			return nil, err
		}
		out[src] = sum
	}
	return out, rows.Err()
}
