package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
	"golang.org/x/sync/errgroup"
)

const exportConcurrency = 3

// DocumentStore writes one document into a named collection and returns
// the id it was stored under.
type DocumentStore interface {
	PutDocument(ctx context.Context, collection string, doc models.Document) (string, error)
}

type BackupService interface {
	// Export copies every row of every primary table into the document
	// store. Each run writes new documents; nothing is overwritten.
	Export(ctx context.Context, session models.Session) (*BackupReport, error)
}

type TableReport struct {
	Table     string `json:"table"`
	Documents int    `json:"documents"`
}

type BackupReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Tables     []TableReport `json:"tables"`
	Total      int           `json:"total"`
}

type backupService struct {
	scanner repositories.TableScanner
	store   DocumentStore
	logger  *slog.Logger
}

// NewBackupService accepts a nil store; Export then reports
// ErrBackupUnavailable.
func NewBackupService(scanner repositories.TableScanner, store DocumentStore, logger *slog.Logger) BackupService {
	return &backupService{
		scanner: scanner,
		store:   store,
		logger:  orDiscard(logger),
	}
}

func (s *backupService) Export(ctx context.Context, session models.Session) (*BackupReport, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrBackupUnavailable
	}

	report := &BackupReport{
		StartedAt: time.Now().UTC(),
		Tables:    make([]TableReport, len(repositories.ExportTables)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for i, table := range repositories.ExportTables {
		i, table := i, table
		g.Go(func() error {
			count, err := s.exportTable(gctx, table)
			if err != nil {
				return fmt.Errorf("export %s: %w", table, err)
			}
			report.Tables[i] = TableReport{Table: table, Documents: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "backup export failed", slog.Any("error", err))
		return nil, err
	}

	for _, t := range report.Tables {
		report.Total += t.Documents
	}
	report.FinishedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "backup export finished",
		slog.Int("documents", report.Total),
		slog.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
		slog.Int("admin_id", session.UserID),
	)
	return report, nil
}

func (s *backupService) exportTable(ctx context.Context, table string) (int, error) {
	docs, err := s.scanner.ScanTable(ctx, nil, table)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		if _, err := s.store.PutDocument(ctx, table, doc); err != nil {
			return 0, err
		}
	}
	s.logger.DebugContext(ctx, "table exported", slog.String("table", table), slog.Int("documents", len(docs)))
	return len(docs), nil
}
