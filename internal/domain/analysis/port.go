package analysis

import (
	"context"
	"time"
)

// Completer port (interface untuk completion provider)
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ReportStore port (interface untuk penyimpanan export report)
type ReportStore interface {
	PutReport(ctx context.Context, key string, body []byte) (url string, expiresAt time.Time, err error)
}
