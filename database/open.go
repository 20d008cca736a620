package database

import (
	"context"
	"fmt"
)

// Backend names accepted by Open
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

// OpenOptions selects and configures a PickStore backend
type OpenOptions struct {
	Backend  string
	Postgres PostgresConfig
	Mongo    MongoConfig
	Supabase SupabaseConfig
}

// Open connects to the configured backend and verifies it answers a ping
func Open(ctx context.Context, opts OpenOptions) (PickStore, error) {
	switch opts.Backend {
	case BackendPostgres:
		store, err := NewPostgresPickStore(ctx, opts.Postgres)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendMongo:
		db, err := NewMongoConnection(ctx, opts.Mongo)
		if err != nil {
			return nil, err
		}
		return NewMongoPickStore(db), nil
	case BackendSupabase:
		store, err := NewSupabasePickStore(opts.Supabase, nil)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := WithShortTimeout(ctx)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case BackendMemory:
		return NewMemoryPickStore(nil), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", opts.Backend)
	}
}
