package gridload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pspoerri/lsgconv/internal/grid"
)

// IsStore reports whether path names a SQLite grid store rather than a CSV.
func IsStore(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// ReadRecords reads the records at path, choosing the format by extension.
func ReadRecords(ctx context.Context, path string) ([]grid.Record, error) {
	if IsStore(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("gridload: %w", err)
		}
		s, err := OpenStore(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Records(ctx)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gridload: %w", err)
	}
	defer f.Close()
	recs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Load reads the grid at path and builds it with the given width.
func Load(ctx context.Context, path string, width int, logger *zap.Logger) (*grid.Grid, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	recs, err := ReadRecords(ctx, path)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(width, recs)
	if err != nil {
		return nil, fmt.Errorf("gridload: building grid from %s: %w", path, err)
	}

	logger.Info("loaded correction grid",
		zap.String("path", path),
		zap.Int("records", len(recs)),
		zap.Int("cells", g.Len()),
		zap.Int("width", width),
		zap.Duration("took", time.Since(start)))
	return g, nil
}
