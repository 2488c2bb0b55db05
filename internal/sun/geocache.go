package sun

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Geocache persists geocoded locations in SQLite so repeated cron runs
// don't hammer Nominatim for the same city.
type Geocache struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenGeocache opens (and if needed creates) the cache database.
func OpenGeocache(path string, logger zerolog.Logger) (*Geocache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open geocache: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS geocache (
			query TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize geocache schema: %w", err)
	}

	return &Geocache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Geocache) Close() error {
	return c.db.Close()
}

// Get retrieves a cached location by query string.
func (c *Geocache) Get(query string) (*Location, bool) {
	var loc Location
	err := c.db.QueryRow(`
		SELECT display_name, latitude, longitude
		FROM geocache
		WHERE query = ?
	`, query).Scan(&loc.Name, &loc.Latitude, &loc.Longitude)

	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("Failed to read geocache")
		return nil, false
	}

	c.logger.Debug().Str("query", query).Float64("lat", loc.Latitude).Float64("lon", loc.Longitude).Msg("Geocache hit")
	return &loc, true
}

// Put stores a geocoded location.
func (c *Geocache) Put(query string, loc *Location) error {
	now := time.Now().Unix()
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO geocache (query, display_name, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, query, loc.Name, loc.Latitude, loc.Longitude, now)

	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("Failed to write geocache")
		return err
	}

	return nil
}
