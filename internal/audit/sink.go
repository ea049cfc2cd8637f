package audit

import (
	"context"
	"log/slog"
	"time"

	"spotly/pkg/logger"

	"gorm.io/gorm"
)

// Sink receives audit entries. Appends are best-effort: a sink must never
// block or fail the mutation that produced the entry.
type Sink interface {
	Append(tenantID string, entry Entry)
}

type gormSink struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewGormSink(db *gorm.DB) Sink {
	return &gormSink{db: db, logger: logger.GetDefault()}
}

// Append writes asynchronously with its own deadline, detached from the
// request context so a finished request cannot cancel the audit write.
func (s *gormSink) Append(tenantID string, entry Entry) {
	entry.TenantID = tenantID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			s.logger.Warn("audit append failed",
				slog.String("tenant_id", tenantID),
				slog.String("action", entry.Action),
				slog.String("resource", entry.Resource),
				slog.Any("error", err),
			)
		}
	}()
}

// NopSink discards entries; useful in tests.
type NopSink struct{}

func (NopSink) Append(string, Entry) {}
