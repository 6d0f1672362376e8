package persistence

import (
	"fmt"
	"log/slog"

	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/world"
)

type profileRow struct {
	Role             string  `db:"role"`
	Name             string  `db:"name"`
	Speed            float64 `db:"speed"`
	PanicSensitivity float64 `db:"panic_sensitivity"`
	X                float64 `db:"x"`
	Y                float64 `db:"y"`
	Z                float64 `db:"z"`
	Yaw              float64 `db:"yaw"`
	Color            string  `db:"color"`
	Model            string  `db:"model"`
	LeadsDance       bool    `db:"leads_dance"`
}

// SaveProfiles writes a profile set, replacing any set of that name.
func (db *DB) SaveProfiles(set string, profiles []agents.Profile) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM profiles WHERE set_name = ?", set); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO profiles
		(set_name, idx, role, name, speed, panic_sensitivity, x, y, z, yaw, color, model, leads_dance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range profiles {
		if _, err := stmt.Exec(set, i, p.Role, p.Name, p.Speed, p.PanicSensitivity,
			p.Position.X, p.Position.Y, p.Position.Z, p.Yaw, p.Color, p.Model, p.LeadsDance); err != nil {
			return fmt.Errorf("insert profile %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("profiles saved", "set", set, "count", len(profiles))
	return nil
}

// LoadProfiles reads a profile set in stored order.
func (db *DB) LoadProfiles(set string) ([]agents.Profile, error) {
	var rows []profileRow
	err := db.conn.Select(&rows, `SELECT role, name, speed, panic_sensitivity, x, y, z, yaw, color, model, leads_dance
		FROM profiles WHERE set_name = ? ORDER BY idx`, set)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile set %q: %w", set, ErrNotFound)
	}
	out := make([]agents.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, agents.Profile{
			Role:             r.Role,
			Name:             r.Name,
			Speed:            r.Speed,
			PanicSensitivity: r.PanicSensitivity,
			Position:         world.Vec3{X: r.X, Y: r.Y, Z: r.Z},
			Yaw:              r.Yaw,
			Color:            r.Color,
			Model:            r.Model,
			LeadsDance:       r.LeadsDance,
		})
	}
	return out, nil
}

// ProfileSets returns the stored set names in order.
func (db *DB) ProfileSets() ([]string, error) {
	var names []string
	err := db.conn.Select(&names, "SELECT DISTINCT set_name FROM profiles ORDER BY set_name")
	return names, err
}
