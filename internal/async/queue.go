package async

import (
	"context"
	"time"
)

// Job asks for one input file to be extracted.
type Job struct {
	Path        string
	Force       bool // bypass the cache gate
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
