package repositories

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store names a SessionRepository backend
type Store string

const (
	StoreMemory   Store = "memory"
	StorePostgres Store = "postgres"
)

// Repositories holds all the repository instances
type Repositories struct {
	SessionRepository SessionRepository
}

// NewRepositories initializes repositories for the configured store. The
// pool is only required for the postgres store.
func NewRepositories(store Store, db *pgxpool.Pool) (*Repositories, error) {
	switch store {
	case StoreMemory, "":
		return &Repositories{SessionRepository: NewMemorySessionRepository()}, nil
	case StorePostgres:
		if db == nil {
			return nil, fmt.Errorf("session store %q requires a database connection", store)
		}
		return &Repositories{SessionRepository: NewPgSessionRepository(db)}, nil
	}
	return nil, fmt.Errorf("unknown session store %q", store)
}
