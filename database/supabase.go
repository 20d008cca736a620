package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"picks-dashboard/logging"
	"picks-dashboard/models"
	"picks-dashboard/stats"
)

// SupabasePageSize is the row count requested per PostgREST page
const SupabasePageSize = 1000

const teamColumns = "id,code,full_name,logo_url"

const matchColumns = "id,date,start_time,status,home_score,away_score,vegas_spread,vegas_total," +
	"home_team:teams!home_team_id(" + teamColumns + ")," +
	"away_team:teams!away_team_id(" + teamColumns + ")"

const pickFields = "id,match_id,confidence_score,consensus_logic,spread_logic,line_info," +
	"ou_pick,ou_confidence,ou_line,spread_outcome,total_outcome,recommended_team_id," +
	"recommended_team:teams!recommended_team_id(" + teamColumns + ")"

// SupabaseConfig holds the hosted project URL and API key
type SupabaseConfig struct {
	URL     string
	Key     string
	Timeout time.Duration
}

// SupabasePickStore implements PickStore over the Supabase REST (PostgREST) API
type SupabasePickStore struct {
	client  *http.Client
	baseURL string
	key     string
	logger  *logging.Logger
}

// SupabaseKeyInfo is what can be read from a JWT-shaped API key without verifying it
type SupabaseKeyInfo struct {
	Role      string
	ExpiresAt *time.Time
	IsJWT     bool
}

// ErrSupabaseKeyExpired is returned when the configured API key has expired
var ErrSupabaseKeyExpired = errors.New("supabase key has expired")

// NewSupabasePickStore creates a REST store. A nil client gets a default one
// with config.Timeout.
func NewSupabasePickStore(config SupabaseConfig, client *http.Client) (*SupabasePickStore, error) {
	logger := logging.WithPrefix("Supabase")

	if config.URL == "" || config.Key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}

	info, err := InspectSupabaseKey(config.Key, time.Now())
	if err != nil {
		return nil, err
	}
	switch {
	case !info.IsJWT:
		logger.Debug("API key is not a JWT, skipping role check")
	case info.Role == "service_role":
		logger.Warn("Using a service_role key, a read-only anon key is sufficient")
	default:
		logger.Debugf("Using %s key", info.Role)
	}

	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = MediumTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &SupabasePickStore{
		client:  client,
		baseURL: strings.TrimRight(config.URL, "/") + "/rest/v1",
		key:     config.Key,
		logger:  logger,
	}, nil
}

// InspectSupabaseKey reads the role and expiry claims of an API key. Keys
// that are not JWTs are accepted as-is.
func InspectSupabaseKey(key string, now time.Time) (SupabaseKeyInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return SupabaseKeyInfo{}, nil
	}

	info := SupabaseKeyInfo{IsJWT: true}
	info.Role, _ = claims["role"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return info, fmt.Errorf("invalid supabase key expiry: %w", err)
	}
	if exp != nil {
		expiresAt := exp.Time
		info.ExpiresAt = &expiresAt
		if !expiresAt.After(now) {
			return info, fmt.Errorf("%w at %s", ErrSupabaseKeyExpired, expiresAt.UTC().Format(time.RFC3339))
		}
	}
	return info, nil
}

// restID accepts both numeric and string primary keys
type restID string

func (id *restID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = restID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = restID(n.String())
	return nil
}

type restTeam struct {
	ID       restID `json:"id"`
	Code     string `json:"code"`
	FullName string `json:"full_name"`
	LogoURL  string `json:"logo_url"`
}

type restMatch struct {
	ID          restID     `json:"id"`
	Date        string     `json:"date"`
	StartTime   time.Time  `json:"start_time"`
	Status      string     `json:"status"`
	HomeScore   *int       `json:"home_score"`
	AwayScore   *int       `json:"away_score"`
	VegasSpread *float64   `json:"vegas_spread"`
	VegasTotal  *float64   `json:"vegas_total"`
	HomeTeam    *restTeam  `json:"home_team"`
	AwayTeam    *restTeam  `json:"away_team"`
	Picks       []restPick `json:"aggregated_picks"`
}

type restPick struct {
	ID              restID     `json:"id"`
	MatchID         restID     `json:"match_id"`
	ConfidenceScore *int       `json:"confidence_score"`
	ConsensusLogic  *string    `json:"consensus_logic"`
	SpreadLogic     *string    `json:"spread_logic"`
	LineInfo        *string    `json:"line_info"`
	OUPick          *string    `json:"ou_pick"`
	OUConfidence    *int       `json:"ou_confidence"`
	OULine          *float64   `json:"ou_line"`
	SpreadOutcome   *string    `json:"spread_outcome"`
	TotalOutcome    *string    `json:"total_outcome"`
	RecommendedTeam *restTeam  `json:"recommended_team"`
	Match           *restMatch `json:"match"`
}

func (t *restTeam) toTeam() models.Team {
	if t == nil {
		return models.Team{}
	}
	return models.Team{ID: string(t.ID), Code: t.Code, FullName: t.FullName, LogoURL: t.LogoURL}
}

func (m *restMatch) toMatch() *models.Match {
	return &models.Match{
		ID:          string(m.ID),
		Date:        datePrefix(m.Date),
		StartTime:   m.StartTime.UTC(),
		Status:      models.MatchStatus(m.Status),
		HomeTeam:    m.HomeTeam.toTeam(),
		AwayTeam:    m.AwayTeam.toTeam(),
		HomeScore:   m.HomeScore,
		AwayScore:   m.AwayScore,
		VegasSpread: m.VegasSpread,
		VegasTotal:  m.VegasTotal,
	}
}

func (p *restPick) toRecord(match *models.Match) models.PickRecord {
	record := models.PickRecord{
		ID:              string(p.ID),
		MatchID:         string(p.MatchID),
		SpreadOutcome:   models.Outcome(deref(p.SpreadOutcome)),
		TotalOutcome:    models.Outcome(deref(p.TotalOutcome)),
		ConfidenceScore: derefInt(p.ConfidenceScore),
		ConsensusLogic:  deref(p.ConsensusLogic),
		SpreadLogic:     deref(p.SpreadLogic),
		LineInfo:        deref(p.LineInfo),
		OUPick:          deref(p.OUPick),
		OUConfidence:    derefInt(p.OUConfidence),
		OULine:          p.OULine,
		Match:           match,
	}
	if p.RecommendedTeam != nil {
		team := p.RecommendedTeam.toTeam()
		record.RecommendedTeam = &team
	}
	if match != nil {
		record.MatchID = match.ID
		record.MatchDate = match.Date
	}
	return record
}

// FindDailyPicks returns the matches starting inside the window with their picks
func (s *SupabasePickStore) FindDailyPicks(ctx context.Context, window stats.DayWindow) ([]models.PickRecord, error) {
	query := url.Values{}
	query.Set("select", matchColumns+",aggregated_picks("+pickFields+")")
	query.Add("start_time", "gte."+window.Start.UTC().Format(time.RFC3339))
	query.Add("start_time", "lt."+window.End.UTC().Format(time.RFC3339))
	query.Set("order", "start_time.asc,id.asc")

	var matches []restMatch
	if err := s.getAll(ctx, MatchesCollection, query, &matches); err != nil {
		return nil, fmt.Errorf("failed to fetch daily picks: %w", err)
	}

	records := make([]models.PickRecord, 0, len(matches))
	for i := range matches {
		match := matches[i].toMatch()
		if len(matches[i].Picks) == 0 {
			records = append(records, models.PickRecord{MatchID: match.ID, MatchDate: match.Date, Match: match})
			continue
		}
		records = append(records, matches[i].Picks[0].toRecord(match))
	}
	sortByStartTime(records)
	return records, nil
}

// FindHistoricalPicks returns every pick with a settled dimension ordered by match date
func (s *SupabasePickStore) FindHistoricalPicks(ctx context.Context) ([]models.PickRecord, error) {
	query := url.Values{}
	query.Set("select", "id,match_id,spread_outcome,total_outcome,match:matches!inner(date)")
	query.Set("or", "(spread_outcome.not.is.null,total_outcome.not.is.null)")
	query.Set("order", "id.asc")

	var picks []restPick
	if err := s.getAll(ctx, PicksCollection, query, &picks); err != nil {
		return nil, fmt.Errorf("failed to fetch historical picks: %w", err)
	}

	records := make([]models.PickRecord, 0, len(picks))
	for i := range picks {
		record := picks[i].toRecord(nil)
		if picks[i].Match != nil {
			record.MatchDate = datePrefix(picks[i].Match.Date)
		}
		records = append(records, record)
	}
	sortByMatchDate(records)
	return records, nil
}

// FindPickByMatch returns the predicted pick of a match or nil
func (s *SupabasePickStore) FindPickByMatch(ctx context.Context, matchID string) (*models.PickRecord, error) {
	query := url.Values{}
	query.Set("select", pickFields+",match:matches!inner("+matchColumns+")")
	query.Set("match_id", "eq."+matchID)
	query.Set("recommended_team_id", "not.is.null")
	query.Set("limit", "1")

	var picks []restPick
	if err := s.get(ctx, PicksCollection, query, &picks); err != nil {
		return nil, fmt.Errorf("failed to fetch pick for match %s: %w", matchID, err)
	}
	if len(picks) == 0 || picks[0].Match == nil {
		return nil, nil
	}

	record := picks[0].toRecord(picks[0].Match.toMatch())
	return &record, nil
}

// Ping requests a single match id
func (s *SupabasePickStore) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("limit", "1")

	var rows []json.RawMessage
	if err := s.get(ctx, MatchesCollection, query, &rows); err != nil {
		return fmt.Errorf("supabase ping failed: %w", err)
	}
	return nil
}

// Close releases idle connections
func (s *SupabasePickStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// getAll pages through a table until a short page is returned
func (s *SupabasePickStore) getAll(ctx context.Context, table string, query url.Values, out interface{}) error {
	var all []json.RawMessage
	for offset := 0; ; offset += SupabasePageSize {
		page := url.Values{}
		for k, v := range query {
			page[k] = v
		}
		page.Set("limit", strconv.Itoa(SupabasePageSize))
		page.Set("offset", strconv.Itoa(offset))

		var rows []json.RawMessage
		if err := s.get(ctx, table, page, &rows); err != nil {
			return err
		}
		all = append(all, rows...)
		if len(rows) < SupabasePageSize {
			break
		}
	}

	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	if all == nil {
		data = []byte("[]")
	}
	return json.Unmarshal(data, out)
}

func (s *SupabasePickStore) get(ctx context.Context, table string, query url.Values, out interface{}) error {
	endpoint := s.baseURL + "/" + table + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", table, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", table, err)
	}
	return nil
}

// datePrefix trims timestamps down to their calendar day
func datePrefix(value string) string {
	if len(value) > len(stats.DateLayout) {
		return value[:len(stats.DateLayout)]
	}
	return value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
