// Package history keeps recorded channel values in a local SQLite database
// and serves them as historic data.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"energychart/internal/logger"
	"energychart/internal/models"
)

// Store wraps the database connection
type Store struct {
	conn *sql.DB
	log  *logger.Logger
}

// Stats summarizes the stored values
type Stats struct {
	Values int       `json:"values"`
	Things int       `json:"things"`
	First  time.Time `json:"first"`
	Last   time.Time `json:"last"`
}

// Open creates a new database connection and initializes the schema
func Open(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite allows a single writer
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, log: logger.Component("history")}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS channel_values (
		ts INTEGER NOT NULL,
		thing TEXT NOT NULL,
		channel TEXT NOT NULL,
		value REAL,
		UNIQUE(ts, thing, channel)
	);
	CREATE INDEX IF NOT EXISTS idx_channel_values_ts ON channel_values(ts);
	`
	_, err := s.conn.Exec(schema)
	return err
}

const upsertValue = `
	INSERT INTO channel_values (ts, thing, channel, value)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(ts, thing, channel) DO UPDATE SET value = excluded.value
	`

// InsertRecord stores every channel value of record, replacing values
// already stored for the same time
func (s *Store) InsertRecord(ctx context.Context, record models.HistoricRecord) error {
	return s.insert(ctx, []models.HistoricRecord{record})
}

func (s *Store) insert(ctx context.Context, records []models.HistoricRecord) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertValue)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		ts := record.Time.UnixMilli()
		for thing, channels := range record.Channels {
			for channel, v := range channels {
				var value sql.NullFloat64
				if v != nil {
					value = sql.NullFloat64{Float64: *v, Valid: true}
				}
				if _, err := stmt.ExecContext(ctx, ts, thing, channel, value); err != nil {
					return fmt.Errorf("failed to insert %s/%s: %w", thing, channel, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit values: %w", err)
	}
	return nil
}

// QueryHistoricData returns the records of rng in time order, restricted
// to channels when the selection is not empty
func (s *Store) QueryHistoricData(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) (*models.HistoricData, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT ts, thing, channel, value FROM channel_values WHERE ts >= ? AND ts <= ?`
	args := []interface{}{rng.From.UnixMilli(), rng.To.UnixMilli()}
	if channels.Len() > 0 {
		var clauses []string
		for thing, chs := range channels {
			for _, ch := range chs {
				clauses = append(clauses, "(thing = ? AND channel = ?)")
				args = append(args, thing, ch)
			}
		}
		query += " AND (" + strings.Join(clauses, " OR ") + ")"
	}
	query += " ORDER BY ts"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query historic data: %w", err)
	}
	defer rows.Close()

	loc := rng.From.Location()
	data := &models.HistoricData{}
	var current *models.HistoricRecord
	for rows.Next() {
		var ts int64
		var thing, channel string
		var value sql.NullFloat64
		if err := rows.Scan(&ts, &thing, &channel, &value); err != nil {
			return nil, fmt.Errorf("failed to scan channel value: %w", err)
		}
		t := time.UnixMilli(ts).In(loc)
		if current == nil || !current.Time.Equal(t) {
			data.Data = append(data.Data, models.HistoricRecord{Time: t})
			current = &data.Data[len(data.Data)-1]
		}
		var v *float64
		if value.Valid {
			f := value.Float64
			v = &f
		}
		current.Set(thing, channel, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read historic data: %w", err)
	}

	if len(data.Data) == 0 {
		return nil, models.ErrNoData
	}
	return data, nil
}

// ImportJSON reads an edge queryHistoricTimeseriesData result (or a full
// JSON-RPC response carrying one) and stores its records. It returns the
// number of imported records.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader, loc *time.Location) (int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read import: %w", err)
	}

	var envelope models.JSONRPCResponse
	if err := json.Unmarshal(content, &envelope); err == nil && len(envelope.Result) > 0 {
		content = envelope.Result
	}

	var result models.HistoricTimeseriesResult
	if err := json.Unmarshal(content, &result); err != nil {
		return 0, fmt.Errorf("failed to parse import: %w", err)
	}
	data, err := result.Records(loc)
	if err != nil {
		return 0, fmt.Errorf("failed to convert import: %w", err)
	}

	if err := s.insert(ctx, data.Data); err != nil {
		return 0, err
	}
	s.log.Info("Imported historic data", map[string]interface{}{
		"records": len(data.Data),
		"from":    data.Data[0].Time.Format(time.RFC3339),
		"to":      data.Data[len(data.Data)-1].Time.Format(time.RFC3339),
	})
	return len(data.Data), nil
}

// Stats returns counts and the covered time span
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	var first, last sql.NullInt64
	row := s.conn.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT thing), MIN(ts), MAX(ts) FROM channel_values`)
	if err := row.Scan(&stats.Values, &stats.Things, &first, &last); err != nil {
		return Stats{}, fmt.Errorf("failed to query history stats: %w", err)
	}
	if first.Valid {
		stats.First = time.UnixMilli(first.Int64).UTC()
	}
	if last.Valid {
		stats.Last = time.UnixMilli(last.Int64).UTC()
	}
	return stats, nil
}
