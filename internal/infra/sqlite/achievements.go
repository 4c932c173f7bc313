package sqlite

import (
	"time"

	"github.com/momentum-app/momentum/internal/domain"
)

// ─── Achievements ───────────────────────────────────────────────────────────

// UnlockAchievement records an unlock. It reports false when id was
// already unlocked, in which case the original time is kept.
func (d *DB) UnlockAchievement(id string, at time.Time) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)`,
		id, toMillis(at),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly unlocked
}

// IsAchievementUnlocked checks whether an achievement has been unlocked.
func (d *DB) IsAchievementUnlocked(id string) (bool, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM achievements WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUnlockedAchievements returns all unlocks, most recent first.
func (d *DB) ListUnlockedAchievements() ([]domain.UnlockedAchievement, error) {
	rows, err := d.db.Query(
		`SELECT id, unlocked_at FROM achievements ORDER BY unlocked_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	achievements := []domain.UnlockedAchievement{}
	for rows.Next() {
		var a domain.UnlockedAchievement
		var unlockedAt int64
		if err := rows.Scan(&a.ID, &unlockedAt); err != nil {
			return nil, err
		}
		a.UnlockedAt = fromMillis(unlockedAt)
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// UnlockedAchievementCount returns how many achievements are unlocked.
func (d *DB) UnlockedAchievementCount() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM achievements`).Scan(&count)
	return count, err
}
