package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"adstudio/internal/domain"
)

// DurationProber reports the play length of a media file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Probe reads container durations with ffprobe.
type Probe struct {
	bin    string
	runner Runner
}

// NewProbe builds a Probe for the ffprobe binary at bin.
func NewProbe(bin string, runner Runner) (*Probe, error) {
	if strings.TrimSpace(bin) == "" {
		return nil, errors.New("media: ffprobe path is required")
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Probe{bin: bin, runner: runner}, nil
}

// Duration returns the duration of path. It fails with domain.ErrProbe when
// the file cannot be read or the reported value is not a finite positive
// number.
func (p *Probe) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.runner.Run(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrProbe, path, err)
	}
	raw := strings.TrimSpace(string(out))
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: unreadable duration %q", domain.ErrProbe, path, raw)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, fmt.Errorf("%w: %s: invalid duration %v", domain.ErrProbe, path, d)
	}
	return d, nil
}

var _ DurationProber = (*Probe)(nil)
