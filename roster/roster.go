// Package roster loads an Assembly's boot-time layout — which
// dispatchers exist, which CPU core and Ether each is pinned to, which
// component kinds run on each, and which burst-controller parent keys
// to pre-register — from a SQLite database, the direct analogue of
// main.go's openDatabase("uniswap_pairs.db")/loadPoolsFromDatabase
// pair and router.go's mustDB. Reconfiguration after Start() remains
// out of scope; the roster is read once, before assembly.Build wires
// anything up.
package roster

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Dispatcher describes one row of the dispatchers table.
type Dispatcher struct {
	Name  string
	Core  int
	Ether string
}

// Component describes one row of the components table: a component
// kind attached to a named dispatcher, in registration order.
type Component struct {
	Dispatcher string
	Kind       string
	Order      int
}

// BurstParent describes one row of the burst_parents table: a parent
// key to pre-register on a named burst.Registry at boot, the same
// "seed before traffic arrives" idea as main.go registering every pool
// address in the router before InitializeArbitrageSystem runs.
type BurstParent struct {
	Controller string
	ParentID   uint64
}

// Roster is the fully loaded boot-time configuration.
type Roster struct {
	Dispatchers  []Dispatcher
	Components   []Component
	BurstParents []BurstParent
}

// Open opens a SQLite database at path for roster loading. Mirrors
// openDatabase: a failure here is a boot-time fatal condition, returned
// rather than panicked so the caller (main's loadRoster) can fall back
// to a static in-code roster instead.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Load reads the full roster out of db. Schema:
//
//	dispatchers(name TEXT, core INTEGER, ether TEXT)
//	components(dispatcher TEXT, kind TEXT, "order" INTEGER)
//	burst_parents(controller TEXT, parent_id INTEGER)
func Load(db *sql.DB) (*Roster, error) {
	dispatchers, err := loadDispatchers(db)
	if err != nil {
		return nil, err
	}
	components, err := loadComponents(db)
	if err != nil {
		return nil, err
	}
	burstParents, err := loadBurstParents(db)
	if err != nil {
		return nil, err
	}
	return &Roster{
		Dispatchers:  dispatchers,
		Components:   components,
		BurstParents: burstParents,
	}, nil
}

func loadDispatchers(db *sql.DB) ([]Dispatcher, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM dispatchers").Scan(&count); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT name, core, ether FROM dispatchers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Dispatcher, 0, count)
	for rows.Next() {
		var d Dispatcher
		if err := rows.Scan(&d.Name, &d.Core, &d.Ether); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func loadComponents(db *sql.DB) ([]Component, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM components").Scan(&count); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT dispatcher, kind, "order" FROM components ORDER BY dispatcher, "order"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Component, 0, count)
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.Dispatcher, &c.Kind, &c.Order); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadBurstParents(db *sql.DB) ([]BurstParent, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM burst_parents").Scan(&count); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT controller, parent_id FROM burst_parents ORDER BY controller`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BurstParent, 0, count)
	for rows.Next() {
		var p BurstParent
		if err := rows.Scan(&p.Controller, &p.ParentID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Static returns a minimal single-dispatcher roster used when no
// database is configured, the fallback path assembly.Build takes
// instead of panicking the way main.go's loadPoolsFromDatabase does on
// an empty table.
func Static() *Roster {
	return &Roster{
		Dispatchers: []Dispatcher{{Name: "default", Core: 0, Ether: "default"}},
		Components:  nil,
	}
}
