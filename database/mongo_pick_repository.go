package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"picks-dashboard/models"
	"picks-dashboard/stats"
)

// MongoPickStore implements PickStore over the matches, teams and
// aggregated_picks collections. Teams and picks are referenced by id and
// joined with $lookup stages.
type MongoPickStore struct {
	db      *MongoDB
	matches *mongo.Collection
	picks   *mongo.Collection
}

// NewMongoPickStore creates a store on an open connection
func NewMongoPickStore(db *MongoDB) *MongoPickStore {
	return &MongoPickStore{
		db:      db,
		matches: db.GetCollection(MatchesCollection),
		picks:   db.GetCollection(PicksCollection),
	}
}

// dailyPickDocument is one match with its optional pick after the joins
type dailyPickDocument struct {
	models.Match    `bson:",inline"`
	Pick            *models.PickRecord `bson:"pick,omitempty"`
	RecommendedTeam *models.Team       `bson:"recommended_team,omitempty"`
}

func (d *dailyPickDocument) toRecord() models.PickRecord {
	match := d.Match
	record := models.PickRecord{}
	if d.Pick != nil {
		record = *d.Pick
	}
	record.MatchID = match.ID
	record.MatchDate = match.Date
	record.Match = &match
	record.RecommendedTeam = d.RecommendedTeam
	return record
}

// FindDailyPicks returns the matches starting inside the window with their picks
func (r *MongoPickStore) FindDailyPicks(ctx context.Context, window stats.DayWindow) ([]models.PickRecord, error) {
	cursor, err := r.matches.Aggregate(ctx, dailyPicksPipeline(window))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily picks: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]models.PickRecord, 0)
	for cursor.Next(ctx) {
		var doc dailyPickDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode daily pick: %w", err)
		}
		records = append(records, doc.toRecord())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error for daily picks: %w", err)
	}

	return records, nil
}

// FindHistoricalPicks returns every pick with a settled dimension ordered by match date
func (r *MongoPickStore) FindHistoricalPicks(ctx context.Context) ([]models.PickRecord, error) {
	cursor, err := r.picks.Aggregate(ctx, historicalPicksPipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate historical picks: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]models.PickRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode historical picks: %w", err)
	}
	return records, nil
}

// FindPickByMatch returns the predicted pick of a match or nil
func (r *MongoPickStore) FindPickByMatch(ctx context.Context, matchID string) (*models.PickRecord, error) {
	cursor, err := r.picks.Aggregate(ctx, pickByMatchPipeline(matchID))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate pick for match %s: %w", matchID, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("cursor error for match %s: %w", matchID, err)
		}
		return nil, nil
	}

	var record models.PickRecord
	if err := cursor.Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode pick for match %s: %w", matchID, err)
	}
	return &record, nil
}

func (r *MongoPickStore) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *MongoPickStore) Close() error {
	return r.db.Close()
}

// lookupTeam joins the team referenced by localField into as
func lookupTeam(localField, as string, preserveMissing bool) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: TeamsCollection},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "id"},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: preserveMissing},
		}}},
	}
}

func dailyPicksPipeline(window stats.DayWindow) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "start_time", Value: bson.D{
				{Key: "$gte", Value: window.Start},
				{Key: "$lt", Value: window.End},
			}},
		}}},
	}
	pipeline = append(pipeline, lookupTeam("home_team_id", "home_team", false)...)
	pipeline = append(pipeline, lookupTeam("away_team_id", "away_team", false)...)
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: PicksCollection},
			{Key: "localField", Value: "id"},
			{Key: "foreignField", Value: "match_id"},
			{Key: "as", Value: "pick"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$pick"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	)
	pipeline = append(pipeline, lookupTeam("pick.recommended_team_id", "recommended_team", true)...)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "start_time", Value: 1},
		{Key: "id", Value: 1},
	}}})
	return pipeline
}

func historicalPicksPipeline() mongo.Pipeline {
	unset := bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "spread_outcome", Value: unset}},
				bson.D{{Key: "total_outcome", Value: unset}},
			}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: MatchesCollection},
			{Key: "localField", Value: "match_id"},
			{Key: "foreignField", Value: "id"},
			{Key: "as", Value: "match"},
		}}},
		{{Key: "$unwind", Value: "$match"}},
		{{Key: "$addFields", Value: bson.D{{Key: "match_date", Value: "$match.date"}}}},
		{{Key: "$project", Value: bson.D{{Key: "match", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "match_date", Value: 1},
			{Key: "id", Value: 1},
		}}},
	}
}

func pickByMatchPipeline(matchID string) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "match_id", Value: matchID},
			{Key: "recommended_team_id", Value: bson.D{{Key: "$ne", Value: nil}}},
		}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: MatchesCollection},
			{Key: "localField", Value: "match_id"},
			{Key: "foreignField", Value: "id"},
			{Key: "as", Value: "match"},
		}}},
		{{Key: "$unwind", Value: "$match"}},
	}
	pipeline = append(pipeline, lookupTeam("match.home_team_id", "match.home_team", false)...)
	pipeline = append(pipeline, lookupTeam("match.away_team_id", "match.away_team", false)...)
	pipeline = append(pipeline, lookupTeam("recommended_team_id", "recommended_team", true)...)
	pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: bson.D{{Key: "match_date", Value: "$match.date"}}}})
	return pipeline
}
