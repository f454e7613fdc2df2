// Package loader fetches the catalog once at startup from a file or the database.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fwselect/firewall-selector/models"
)

// ErrCatalogUnavailable is returned when every load attempt failed.
var ErrCatalogUnavailable = errors.New("catalog data unavailable")

type Loader interface {
	Load(ctx context.Context) (*models.Catalog, error)
}

// FileLoader reads a JSON catalog from disk.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(ctx context.Context) (*models.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return models.ParseCatalog(data)
}

type CatalogRepository interface {
	LoadCatalog(ctx context.Context, terms []int) (*models.Catalog, error)
}

// DBLoader reads the catalog from the products table.
type DBLoader struct {
	Repo  CatalogRepository
	Terms []int
}

func (l DBLoader) Load(ctx context.Context) (*models.Catalog, error) {
	return l.Repo.LoadCatalog(ctx, l.Terms)
}

type RetryPolicy struct {
	Attempts int
	Timeout  time.Duration
	Delay    time.Duration
}

// LoadWithRetry runs l until it succeeds or the policy is exhausted. Each
// attempt gets its own timeout. A malformed catalog is returned at once since
// retrying cannot fix it.
func LoadWithRetry(ctx context.Context, l Loader, p RetryPolicy, log *zap.Logger) (*models.Catalog, error) {
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		cat, err := loadOnce(ctx, l, p.Timeout)
		if err == nil {
			log.Info("Catalog loaded",
				zap.Int("products", cat.Len()),
				zap.Ints("terms", cat.Terms()),
				zap.Int("attempt", attempt),
			)
			return cat, nil
		}
		if errors.Is(err, models.ErrMalformedCatalog) {
			return nil, err
		}

		lastErr = err
		log.Warn("Catalog load failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, ctx.Err())
		case <-time.After(p.Delay):
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrCatalogUnavailable, attempts, lastErr)
}

func loadOnce(ctx context.Context, l Loader, timeout time.Duration) (*models.Catalog, error) {
	if timeout <= 0 {
		return l.Load(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return l.Load(attemptCtx)
}

// Snapshot is the result of the startup load: either a catalog or the reason
// there is none. It never changes after construction.
type Snapshot struct {
	catalog *models.Catalog
	err     error
}

func NewSnapshot(catalog *models.Catalog, err error) *Snapshot {
	if catalog == nil && err == nil {
		err = ErrCatalogUnavailable
	}
	return &Snapshot{catalog: catalog, err: err}
}

func (s *Snapshot) Catalog() (*models.Catalog, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.catalog, nil
}
