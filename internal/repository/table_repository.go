package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unclebandit/creditsim/internal/config"
	"github.com/unclebandit/creditsim/internal/db"
	"github.com/unclebandit/creditsim/internal/model"
)

// TableRepositoryInterface is the only contract the pipeline has with storage:
// persist table T under name T, and load table T by name T.
type TableRepositoryInterface interface {
	Save(ctx context.Context, t *model.Table) error
	Load(ctx context.Context, name string) (*model.Table, error)
}

// MultiRepository writes every table to the primary store and all mirrors,
// and reads from the primary only.
type MultiRepository struct {
	Primary TableRepositoryInterface
	Mirrors []TableRepositoryInterface
}

func (r *MultiRepository) Save(ctx context.Context, t *model.Table) error {
	if err := r.Primary.Save(ctx, t); err != nil {
		return err
	}
	for i, m := range r.Mirrors {
		if err := m.Save(ctx, t); err != nil {
			return fmt.Errorf("mirror %d: %w", i, err)
		}
	}
	return nil
}

func (r *MultiRepository) Load(ctx context.Context, name string) (*model.Table, error) {
	return r.Primary.Load(ctx, name)
}

var _ TableRepositoryInterface = (*MultiRepository)(nil)

// NewFromConfig returns the CSV store, mirrored into postgres when enabled.
// The returned close function releases the database connection.
func NewFromConfig(cfg config.StorageConfig, logger *zap.Logger) (*MultiRepository, func() error, error) {
	repo := &MultiRepository{Primary: &CSVRepository{Dir: cfg.CSVDir}}
	if !cfg.Postgres.Enabled {
		return repo, func() error { return nil }, nil
	}

	conn, err := db.Open(cfg.Postgres, logger)
	if err != nil {
		return nil, nil, err
	}
	repo.Mirrors = append(repo.Mirrors, &PostgresRepository{DB: conn})
	return repo, conn.Close, nil
}
