package processor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/PratikDhanave/order-event-processor/internal/events"
)

const maxLineSize = 1024 * 1024

// ReplayOptions configures Replay.
type ReplayOptions struct {
	// Delay paces calls for display purposes.
	Delay time.Duration
	// OnParseError is called for lines that do not parse; they are skipped.
	OnParseError func(line int, err error)
}

// ReplayReport summarizes a replay run.
type ReplayReport struct {
	Lines          int
	ParseErrors    int
	Applied        int
	TargetNotFound int
	Failed         int
}

// Replay feeds newline-delimited JSON events into the processor in order.
// Blank lines are ignored.
func Replay(ctx context.Context, r io.Reader, p *Processor, opts ReplayOptions) (ReplayReport, error) {
	var report ReplayReport

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	first := true
	for scanner.Scan() {
		report.Lines++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		evt, err := events.Parse(line)
		if err != nil {
			report.ParseErrors++
			if opts.OnParseError != nil {
				opts.OnParseError(report.Lines, err)
			}
			continue
		}

		if !first && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
		first = false

		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := p.Process(evt)
		switch {
		case err != nil:
			report.Failed++
		case res == TargetNotFound:
			report.TargetNotFound++
		default:
			report.Applied++
		}
	}

	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read events: %w", err)
	}
	return report, nil
}
