package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const SQLiteFileName = "pet.db"

// SQLiteStore keeps the pet as the single row of the pet_state table.
type SQLiteStore struct {
	conn *sqlx.DB
}

// sqliteRow is Record with the inventories flattened to JSON text.
type sqliteRow struct {
	Record
	ID            int    `db:"id"`
	FoodInventory string `db:"food_inventory"`
	ToyInventory  string `db:"toy_inventory"`
}

// OpenSQLite opens or creates a SQLite database at the given path. Use
// ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	conn.SetMaxOpenConns(1)

	st := &SQLiteStore{conn: conn}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

func (st *SQLiteStore) Close() error {
	return st.conn.Close()
}

func (st *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pet_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		hunger REAL NOT NULL,
		happiness REAL NOT NULL,
		cleanliness REAL NOT NULL,
		sleepiness REAL NOT NULL,
		running_level REAL NOT NULL,
		swimming_level REAL NOT NULL,
		cycling_level REAL NOT NULL,
		last_sleep_hours REAL NOT NULL,
		active_action TEXT NOT NULL,
		selected_food_type TEXT NOT NULL,
		selected_toy_type TEXT NOT NULL,
		pet_name TEXT NOT NULL,
		pet_points INTEGER NOT NULL,
		food_inventory TEXT NOT NULL,
		toy_inventory TEXT NOT NULL,
		total_running_distance REAL NOT NULL,
		total_swimming_distance REAL NOT NULL,
		total_cycling_distance REAL NOT NULL,
		pet_evolution_stage TEXT NOT NULL
	);
	`
	_, err := st.conn.Exec(schema)
	return err
}

func (st *SQLiteStore) Load(ctx context.Context) (Record, error) {
	var row sqliteRow
	err := st.conn.GetContext(ctx, &row, `SELECT * FROM pet_state WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: load pet_state: %w", ErrDecode, err)
	}

	rec := row.Record
	if err := json.Unmarshal([]byte(row.FoodInventory), &rec.FoodInventory); err != nil {
		return Record{}, fmt.Errorf("%w: food_inventory: %w", ErrDecode, err)
	}
	if err := json.Unmarshal([]byte(row.ToyInventory), &rec.ToyInventory); err != nil {
		return Record{}, fmt.Errorf("%w: toy_inventory: %w", ErrDecode, err)
	}
	return rec, nil
}

func (st *SQLiteStore) Save(ctx context.Context, rec Record) error {
	food, err := json.Marshal(nonNilInventory(rec.FoodInventory))
	if err != nil {
		return fmt.Errorf("marshal food_inventory: %w", err)
	}
	toys, err := json.Marshal(nonNilInventory(rec.ToyInventory))
	if err != nil {
		return fmt.Errorf("marshal toy_inventory: %w", err)
	}

	row := sqliteRow{Record: rec, ID: 1, FoodInventory: string(food), ToyInventory: string(toys)}
	_, err = st.conn.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO pet_state (
			id, hunger, happiness, cleanliness, sleepiness,
			running_level, swimming_level, cycling_level, last_sleep_hours,
			active_action, selected_food_type, selected_toy_type,
			pet_name, pet_points, food_inventory, toy_inventory,
			total_running_distance, total_swimming_distance, total_cycling_distance,
			pet_evolution_stage
		) VALUES (
			:id, :hunger, :happiness, :cleanliness, :sleepiness,
			:running_level, :swimming_level, :cycling_level, :last_sleep_hours,
			:active_action, :selected_food_type, :selected_toy_type,
			:pet_name, :pet_points, :food_inventory, :toy_inventory,
			:total_running_distance, :total_swimming_distance, :total_cycling_distance,
			:pet_evolution_stage
		)`, row)
	if err != nil {
		return fmt.Errorf("save pet_state: %w", err)
	}
	return nil
}

func nonNilInventory(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
