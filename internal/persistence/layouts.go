package persistence

import (
	"fmt"
	"log/slog"

	"github.com/talgya/evacsim/internal/world"
)

type layoutRow struct {
	Name    string  `db:"name"`
	MinX    float64 `db:"min_x"`
	MaxX    float64 `db:"max_x"`
	MinZ    float64 `db:"min_z"`
	MaxZ    float64 `db:"max_z"`
	OriginX float64 `db:"origin_x"`
	OriginY float64 `db:"origin_y"`
	OriginZ float64 `db:"origin_z"`
}

type exitRow struct {
	Name string  `db:"name"`
	X    float64 `db:"x"`
	Y    float64 `db:"y"`
	Z    float64 `db:"z"`
	Room string  `db:"room"`
}

type spotRow struct {
	Kind  string  `db:"kind"`
	X     float64 `db:"x"`
	Y     float64 `db:"y"`
	Z     float64 `db:"z"`
	SizeX float64 `db:"size_x"`
	SizeY float64 `db:"size_y"`
	SizeZ float64 `db:"size_z"`
	Room  string  `db:"room"`
}

type doorRow struct {
	X    float64 `db:"x"`
	Y    float64 `db:"y"`
	Z    float64 `db:"z"`
	Open bool    `db:"open"`
}

type wallRow struct {
	MinX float64 `db:"min_x"`
	MaxX float64 `db:"max_x"`
	MinZ float64 `db:"min_z"`
	MaxZ float64 `db:"max_z"`
}

// SaveLayout writes b under name, replacing any layout of that name.
// Doors are stored in their baseline state.
func (db *DB) SaveLayout(name string, b *world.Building) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"exits", "safe_spots", "doors", "walls"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE layout = ?", name); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM layouts WHERE name = ?", name); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO layouts
		(name, min_x, max_x, min_z, max_z, origin_x, origin_y, origin_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, b.Floor.MinX, b.Floor.MaxX, b.Floor.MinZ, b.Floor.MaxZ,
		b.Origin.X, b.Origin.Y, b.Origin.Z,
	); err != nil {
		return fmt.Errorf("insert layout %q: %w", name, err)
	}

	for i, e := range b.ExitList {
		if _, err := tx.Exec("INSERT INTO exits (layout, idx, name, x, y, z, room) VALUES (?, ?, ?, ?, ?, ?, ?)",
			name, i, e.Name, e.Position.X, e.Position.Y, e.Position.Z, e.Room); err != nil {
			return fmt.Errorf("insert exit %d: %w", i, err)
		}
	}
	for i, s := range b.SafeSpotList {
		if _, err := tx.Exec(`INSERT INTO safe_spots
			(layout, idx, kind, x, y, z, size_x, size_y, size_z, room)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, i, s.Kind, s.Position.X, s.Position.Y, s.Position.Z,
			s.Size.X, s.Size.Y, s.Size.Z, s.Room); err != nil {
			return fmt.Errorf("insert safe spot %d: %w", i, err)
		}
	}

	baseline := b.Clone()
	baseline.Reset()
	for i, d := range baseline.Doors {
		if _, err := tx.Exec("INSERT INTO doors (layout, idx, x, y, z, open) VALUES (?, ?, ?, ?, ?, ?)",
			name, i, d.Position.X, d.Position.Y, d.Position.Z, d.Open); err != nil {
			return fmt.Errorf("insert door %d: %w", i, err)
		}
	}
	for i, w := range b.Walls {
		if _, err := tx.Exec("INSERT INTO walls (layout, idx, min_x, max_x, min_z, max_z) VALUES (?, ?, ?, ?, ?, ?)",
			name, i, w.MinX, w.MaxX, w.MinZ, w.MaxZ); err != nil {
			return fmt.Errorf("insert wall %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("layout saved", "layout", name, "exits", len(b.ExitList), "safe_spots", len(b.SafeSpotList))
	return nil
}

// LoadLayout reads the layout stored under name.
func (db *DB) LoadLayout(name string) (*world.Building, error) {
	var l layoutRow
	if err := db.conn.Get(&l, "SELECT * FROM layouts WHERE name = ?", name); err != nil {
		return nil, notFound(err, fmt.Sprintf("layout %q", name))
	}

	b := &world.Building{
		Name:   l.Name,
		Floor:  world.Bounds{MinX: l.MinX, MaxX: l.MaxX, MinZ: l.MinZ, MaxZ: l.MaxZ},
		Origin: world.Vec3{X: l.OriginX, Y: l.OriginY, Z: l.OriginZ},
	}

	var exits []exitRow
	if err := db.conn.Select(&exits, "SELECT name, x, y, z, room FROM exits WHERE layout = ? ORDER BY idx", name); err != nil {
		return nil, fmt.Errorf("load exits: %w", err)
	}
	for _, e := range exits {
		b.ExitList = append(b.ExitList, world.Exit{Name: e.Name, Position: world.Vec3{X: e.X, Y: e.Y, Z: e.Z}, Room: e.Room})
	}

	var spots []spotRow
	if err := db.conn.Select(&spots,
		"SELECT kind, x, y, z, size_x, size_y, size_z, room FROM safe_spots WHERE layout = ? ORDER BY idx", name); err != nil {
		return nil, fmt.Errorf("load safe spots: %w", err)
	}
	for _, s := range spots {
		b.SafeSpotList = append(b.SafeSpotList, world.SafeSpot{
			Kind:     s.Kind,
			Position: world.Vec3{X: s.X, Y: s.Y, Z: s.Z},
			Size:     world.Vec3{X: s.SizeX, Y: s.SizeY, Z: s.SizeZ},
			Room:     s.Room,
		})
	}

	var doors []doorRow
	if err := db.conn.Select(&doors, "SELECT x, y, z, open FROM doors WHERE layout = ? ORDER BY idx", name); err != nil {
		return nil, fmt.Errorf("load doors: %w", err)
	}
	for _, d := range doors {
		b.Doors = append(b.Doors, world.Door{Position: world.Vec3{X: d.X, Y: d.Y, Z: d.Z}, Open: d.Open})
	}

	var walls []wallRow
	if err := db.conn.Select(&walls, "SELECT min_x, max_x, min_z, max_z FROM walls WHERE layout = ? ORDER BY idx", name); err != nil {
		return nil, fmt.Errorf("load walls: %w", err)
	}
	for _, w := range walls {
		b.Walls = append(b.Walls, world.Wall{MinX: w.MinX, MaxX: w.MaxX, MinZ: w.MinZ, MaxZ: w.MaxZ})
	}

	b.MarkInitial()
	return b, nil
}

// Layouts returns the stored layout names in order.
func (db *DB) Layouts() ([]string, error) {
	var names []string
	err := db.conn.Select(&names, "SELECT name FROM layouts ORDER BY name")
	return names, err
}
