// Package clickhouse stores unit prices in ClickHouse. Rates are
// written in snapshots so a pricing refresh replaces the working set
// atomically; lookups always read the newest snapshot.
package clickhouse

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/pricing"
)

// Config holds ClickHouse connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns development defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "tfcost",
		Username: "default",
	}
}

// Validate checks the configuration before a connection is attempted.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &errors.ConfigurationError{Field: "Host", Reason: "must not be empty"}
	}
	if c.Port <= 0 {
		return &errors.ConfigurationError{Field: "Port", Reason: "must be positive"}
	}
	if c.Database == "" {
		return &errors.ConfigurationError{Field: "Database", Reason: "must not be empty"}
	}
	return nil
}

// PriceRow is one stored unit price.
type PriceRow struct {
	SnapshotID     uuid.UUID
	Provider       classify.CloudProvider
	ResourceType   classify.ResourceType
	Region         string
	Tier           string
	SizeDescriptor string
	Price          decimal.Decimal
	Unit           string
	Currency       string
	FetchedAt      time.Time
}

// Store is a ClickHouse-backed pricing source.
type Store struct {
	conn driver.Conn
	cfg  *Config
}

// NewStore connects to ClickHouse.
func NewStore(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to ClickHouse: %w", err)
	}

	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Migrate creates the pricing tables.
func (s *Store) Migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS pricing_snapshots (
			id UUID,
			source String,
			fetched_at DateTime,
			created_at DateTime DEFAULT now()
		) ENGINE = MergeTree() ORDER BY (fetched_at, id)`,
		`CREATE TABLE IF NOT EXISTS unit_prices (
			snapshot_id UUID,
			provider LowCardinality(String),
			resource_type LowCardinality(String),
			region LowCardinality(String),
			tier LowCardinality(String),
			size_descriptor String,
			price Decimal(18, 8),
			unit LowCardinality(String),
			currency LowCardinality(String),
			fetched_at DateTime
		) ENGINE = MergeTree()
		ORDER BY (provider, resource_type, region, tier, size_descriptor, fetched_at)`,
	}
	for _, stmt := range ddl {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}

// CreateSnapshot records a pricing capture and returns its ID.
func (s *Store) CreateSnapshot(ctx context.Context, source string, fetchedAt time.Time) (uuid.UUID, error) {
	id := uuid.New()
	err := s.conn.Exec(ctx,
		`INSERT INTO pricing_snapshots (id, source, fetched_at) VALUES (?, ?, ?)`,
		id, source, fetchedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating snapshot: %w", err)
	}
	return id, nil
}

// InsertPrices batch-inserts rates under a snapshot.
func (s *Store) InsertPrices(ctx context.Context, rows []PriceRow) error {
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO unit_prices (
		snapshot_id, provider, resource_type, region, tier,
		size_descriptor, price, unit, currency, fetched_at
	)`)
	if err != nil {
		return fmt.Errorf("preparing price batch: %w", err)
	}
	for _, row := range rows {
		err := batch.Append(
			row.SnapshotID,
			string(row.Provider),
			string(row.ResourceType),
			row.Region,
			row.Tier,
			row.SizeDescriptor,
			row.Price,
			row.Unit,
			row.Currency,
			row.FetchedAt,
		)
		if err != nil {
			return fmt.Errorf("appending price row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("sending price batch: %w", err)
	}
	return nil
}

// GetUnitPrice implements pricing.Source. Lookup falls back from the
// exact region to the provider's default region, then to the
// size-generic rate, mirroring the static source.
func (s *Store) GetUnitPrice(ctx context.Context, q pricing.Query) (pricing.UnitPrice, error) {
	candidates := []pricing.Query{q}

	if q.Region != pricing.DefaultRegion(q.Provider) {
		fallback := q
		fallback.Region = pricing.DefaultRegion(q.Provider)
		candidates = append(candidates, fallback)
	}
	if q.SizeDescriptor != "" {
		generic := q
		generic.SizeDescriptor = ""
		generic.Region = pricing.DefaultRegion(q.Provider)
		candidates = append(candidates, generic)
	}

	for _, candidate := range candidates {
		price, err := s.lookup(ctx, candidate)
		if err == nil {
			return price, nil
		}
		if !stderrors.Is(err, sql.ErrNoRows) {
			return pricing.UnitPrice{}, err
		}
	}

	return pricing.UnitPrice{}, &errors.PricingDataNotFoundError{
		Provider:     string(q.Provider),
		ResourceType: string(q.ResourceType),
		Region:       q.Region,
		Tier:         string(q.Tier),
		Size:         q.SizeDescriptor,
	}
}

func (s *Store) lookup(ctx context.Context, q pricing.Query) (pricing.UnitPrice, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT price, unit, currency
		FROM unit_prices
		WHERE provider = ? AND resource_type = ? AND region = ?
		  AND tier = ? AND size_descriptor = ?
		ORDER BY fetched_at DESC
		LIMIT 1`,
		string(q.Provider), string(q.ResourceType), q.Region,
		string(q.Tier), q.SizeDescriptor,
	)

	var price pricing.UnitPrice
	if err := row.Scan(&price.Price, &price.Unit, &price.Currency); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return pricing.UnitPrice{}, err
		}
		return pricing.UnitPrice{}, fmt.Errorf("querying unit price: %w", err)
	}
	return price, nil
}
