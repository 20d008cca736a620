package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"picks-dashboard/logging"
	"picks-dashboard/models"
	"picks-dashboard/stats"

	_ "github.com/lib/pq"
)

// PostgresConfig holds the connection settings of the relational store
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// PostgresPickStore reads picks from the hosted PostgreSQL database
type PostgresPickStore struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresPickStore opens and pings the database
func NewPostgresPickStore(ctx context.Context, config PostgresConfig) (*PostgresPickStore, error) {
	logger := logging.WithPrefix("Postgres")

	db, err := sql.Open("postgres", config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 25
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = 5
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := WithShortTimeout(ctx)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		logger.Errorf("Failed to ping: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected")
	return &PostgresPickStore{db: db, logger: logger}, nil
}

// NewPostgresPickStoreFromDB wraps an already opened handle
func NewPostgresPickStoreFromDB(db *sql.DB) *PostgresPickStore {
	return &PostgresPickStore{db: db, logger: logging.WithPrefix("Postgres")}
}

// pickColumns is shared by the daily and detail queries; scanPickRow reads it back
const pickColumns = `
	m.id::text, to_char(m.date, 'YYYY-MM-DD'), m.start_time, COALESCE(m.status, ''),
	m.home_score, m.away_score, m.vegas_spread, m.vegas_total,
	home.id::text, home.code, COALESCE(home.full_name, ''), COALESCE(home.logo_url, ''),
	away.id::text, away.code, COALESCE(away.full_name, ''), COALESCE(away.logo_url, ''),
	p.id::text, p.confidence_score, p.consensus_logic, p.spread_logic, p.line_info,
	p.ou_pick, p.ou_confidence, p.ou_line, p.spread_outcome, p.total_outcome,
	rec.id::text, rec.code, rec.full_name, rec.logo_url`

const dailyPicksQuery = `
SELECT` + pickColumns + `
FROM matches m
JOIN teams home ON home.id = m.home_team_id
JOIN teams away ON away.id = m.away_team_id
LEFT JOIN aggregated_picks p ON p.match_id = m.id
LEFT JOIN teams rec ON rec.id = p.recommended_team_id
WHERE m.start_time >= $1 AND m.start_time < $2
ORDER BY m.start_time ASC, m.id ASC`

const pickByMatchQuery = `
SELECT` + pickColumns + `
FROM aggregated_picks p
JOIN matches m ON m.id = p.match_id
JOIN teams home ON home.id = m.home_team_id
JOIN teams away ON away.id = m.away_team_id
LEFT JOIN teams rec ON rec.id = p.recommended_team_id
WHERE m.id::text = $1 AND p.recommended_team_id IS NOT NULL
LIMIT 1`

const historicalPicksQuery = `
SELECT p.id::text, p.match_id::text, to_char(m.date, 'YYYY-MM-DD'), p.spread_outcome, p.total_outcome
FROM aggregated_picks p
JOIN matches m ON m.id = p.match_id
WHERE p.spread_outcome IS NOT NULL OR p.total_outcome IS NOT NULL
ORDER BY m.date ASC, p.id ASC`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// FindDailyPicks returns the matches starting inside the window with their picks
func (s *PostgresPickStore) FindDailyPicks(ctx context.Context, window stats.DayWindow) ([]models.PickRecord, error) {
	rows, err := s.db.QueryContext(ctx, dailyPicksQuery, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily picks: %w", err)
	}
	defer rows.Close()

	records := make([]models.PickRecord, 0)
	for rows.Next() {
		record, err := scanPickRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily pick: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily picks: %w", err)
	}

	s.logger.Debugf("Loaded %d matches for %s", len(records), window.Date)
	return records, nil
}

// FindHistoricalPicks returns every pick with a settled dimension, oldest first
func (s *PostgresPickStore) FindHistoricalPicks(ctx context.Context) ([]models.PickRecord, error) {
	rows, err := s.db.QueryContext(ctx, historicalPicksQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical picks: %w", err)
	}
	defer rows.Close()

	records := make([]models.PickRecord, 0)
	for rows.Next() {
		var (
			record        models.PickRecord
			spreadOutcome sql.NullString
			totalOutcome  sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.MatchID, &record.MatchDate, &spreadOutcome, &totalOutcome); err != nil {
			return nil, fmt.Errorf("failed to scan historical pick: %w", err)
		}
		record.SpreadOutcome = models.Outcome(spreadOutcome.String)
		record.TotalOutcome = models.Outcome(totalOutcome.String)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate historical picks: %w", err)
	}

	return records, nil
}

// FindPickByMatch returns the pick of a match or nil when the match has no prediction
func (s *PostgresPickStore) FindPickByMatch(ctx context.Context, matchID string) (*models.PickRecord, error) {
	record, err := scanPickRow(s.db.QueryRowContext(ctx, pickByMatchQuery, matchID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pick for match %s: %w", matchID, err)
	}
	return &record, nil
}

// Ping checks the connection
func (s *PostgresPickStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// Close closes the pool
func (s *PostgresPickStore) Close() error {
	err := s.db.Close()
	if err != nil {
		s.logger.Errorf("Error closing: %v", err)
	} else {
		s.logger.Info("Connection closed successfully")
	}
	return err
}

// scanPickRow reads one row laid out as pickColumns
func scanPickRow(row rowScanner) (models.PickRecord, error) {
	var (
		match      models.Match
		status     string
		homeScore  sql.NullInt64
		awayScore  sql.NullInt64
		spreadLine sql.NullFloat64
		totalLine  sql.NullFloat64

		pickID, consensus, spreadLogic, lineInfo, ouPick sql.NullString
		spreadOutcome, totalOutcome                      sql.NullString
		confidence, ouConfidence                         sql.NullInt64
		ouLine                                           sql.NullFloat64

		recID, recCode, recName, recLogo sql.NullString
	)

	err := row.Scan(
		&match.ID, &match.Date, &match.StartTime, &status,
		&homeScore, &awayScore, &spreadLine, &totalLine,
		&match.HomeTeam.ID, &match.HomeTeam.Code, &match.HomeTeam.FullName, &match.HomeTeam.LogoURL,
		&match.AwayTeam.ID, &match.AwayTeam.Code, &match.AwayTeam.FullName, &match.AwayTeam.LogoURL,
		&pickID, &confidence, &consensus, &spreadLogic, &lineInfo,
		&ouPick, &ouConfidence, &ouLine, &spreadOutcome, &totalOutcome,
		&recID, &recCode, &recName, &recLogo,
	)
	if err != nil {
		return models.PickRecord{}, err
	}

	match.Status = models.MatchStatus(status)
	match.StartTime = match.StartTime.UTC()
	match.HomeScore = nullInt(homeScore)
	match.AwayScore = nullInt(awayScore)
	match.VegasSpread = nullFloat(spreadLine)
	match.VegasTotal = nullFloat(totalLine)

	record := models.PickRecord{
		ID:              pickID.String,
		MatchID:         match.ID,
		MatchDate:       match.Date,
		SpreadOutcome:   models.Outcome(spreadOutcome.String),
		TotalOutcome:    models.Outcome(totalOutcome.String),
		ConfidenceScore: int(confidence.Int64),
		ConsensusLogic:  consensus.String,
		SpreadLogic:     spreadLogic.String,
		LineInfo:        lineInfo.String,
		OUPick:          ouPick.String,
		OUConfidence:    int(ouConfidence.Int64),
		OULine:          nullFloat(ouLine),
		Match:           &match,
	}

	if recID.Valid {
		record.RecommendedTeam = &models.Team{
			ID:       recID.String,
			Code:     recCode.String,
			FullName: recName.String,
			LogoURL:  recLogo.String,
		}
	}

	return record, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
