package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskory/taskory/pkg/persistence"
	"github.com/taskory/taskory/pkg/persistence/file"
	"github.com/taskory/taskory/pkg/persistence/postgresql"
)

// NewPersistence picks the storage backend from the URL scheme: postgres for
// production, a plain directory path (or file://) for development.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to initialize postgres persistence: %w", err))
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}
