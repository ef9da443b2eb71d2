package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"huurhuis-scraper/models"
)

// PostgresStore implements Store on top of PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS broker_agencies (
			broker_id   SERIAL PRIMARY KEY,
			broker_name TEXT NOT NULL UNIQUE,
			hyperlink   TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS property (
			property_id SERIAL PRIMARY KEY,
			broker_id   INTEGER NOT NULL REFERENCES broker_agencies(broker_id),
			adres       TEXT NOT NULL,
			hyperlink   TEXT NOT NULL DEFAULT '',
			city        TEXT NOT NULL DEFAULT '',
			price       INTEGER NOT NULL DEFAULT 0,
			size        TEXT NOT NULL DEFAULT '',
			added_on    DATE NOT NULL DEFAULT CURRENT_DATE
		);

		CREATE INDEX IF NOT EXISTS idx_property_broker ON property(broker_id);
		CREATE INDEX IF NOT EXISTS idx_property_adres  ON property(broker_id, adres);
	`)
	return err
}

// FindBrokerByName looks a broker up by its display name; nil when absent.
func (ps *PostgresStore) FindBrokerByName(name string) (*models.Broker, error) {
	row := ps.db.QueryRow(`
		SELECT broker_id, broker_name, hyperlink
		FROM broker_agencies
		WHERE broker_name = $1
	`, name)

	b := &models.Broker{}
	err := row.Scan(&b.ID, &b.Name, &b.URL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find broker %q: %w", name, err)
	}
	return b, nil
}

// CreateBroker inserts a broker and returns the assigned id.
func (ps *PostgresStore) CreateBroker(name, url string) (int64, error) {
	var id int64
	err := ps.db.QueryRow(`
		INSERT INTO broker_agencies (broker_name, hyperlink)
		VALUES ($1, $2)
		RETURNING broker_id
	`, name, url).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: create broker %q: %w", name, err)
	}
	return id, nil
}

// ListListingsForBroker returns every persisted listing owned by the broker.
func (ps *PostgresStore) ListListingsForBroker(brokerID int64) ([]models.Listing, error) {
	rows, err := ps.db.Query(`
		SELECT broker_id, adres, hyperlink, city, price, size, added_on
		FROM property
		WHERE broker_id = $1
	`, brokerID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list listings for broker %d: %w", brokerID, err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(
			&l.BrokerID, &l.Address, &l.Link, &l.City, &l.Price, &l.Area, &l.AddedOn,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// CreateListing inserts a single listing row.
func (ps *PostgresStore) CreateListing(l *models.Listing) error {
	_, err := ps.db.Exec(`
		INSERT INTO property (broker_id, adres, hyperlink, city, price, size, added_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, l.BrokerID, l.Address, l.Link, l.City, l.Price, l.Area, l.AddedOn)
	if err != nil {
		return fmt.Errorf("postgres: create listing %q: %w", l.Address, err)
	}
	return nil
}

// DeleteListing removes the row keyed by (brokerID, address). Zero rows
// affected is fine: the listing may already be gone.
func (ps *PostgresStore) DeleteListing(brokerID int64, address string) error {
	_, err := ps.db.Exec(`
		DELETE FROM property
		WHERE broker_id = $1 AND adres = $2
	`, brokerID, address)
	if err != nil {
		return fmt.Errorf("postgres: delete listing %q: %w", address, err)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
