package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/joseph-ayodele/cadri-extractor/internal/utils"
)

// stderrLimit caps the converter diagnostics copied into a log line.
const stderrLimit = 8 << 10

// Runner executes an external PDF converter. The pdftotext backend goes
// through it so tests can feed canned output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner runs the converter as a child process. The last argument is the
// certificate path and is logged on its own.
type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	start := time.Now()
	err := cmd.Run()
	attrs := []any{"converter", name, "path", certificatePath(args), "duration_ms", time.Since(start).Milliseconds()}

	if err != nil {
		r.logger.Warn("text.converter.failed", append(attrs,
			"error", err,
			"stderr", utils.TruncateRunes(stderr.String(), stderrLimit, "..."),
		)...)
		return stdout.Bytes(), stderr.Bytes(), err
	}
	r.logger.Debug("text.converter.ok", append(attrs, "text_bytes", stdout.Len())...)
	return stdout.Bytes(), stderr.Bytes(), nil
}

// certificatePath picks the input file from a pdftotext argument list, where
// it precedes the "-" that sends text to stdout.
func certificatePath(args []string) string {
	for i := len(args) - 1; i >= 0; i-- {
		if args[i] != "-" {
			return args[i]
		}
	}
	return ""
}
