package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ErrTimeout is returned for a page whose recognition exceeded the
// configured wall-clock deadline. It is distinct from every other error
// kind so callers can apply a differentiated retry policy.
var ErrTimeout = errors.New("ocr timed out")

// RunnerConfig controls page dispatch.
type RunnerConfig struct {
	Workers     int           // concurrent recognitions, default 4
	PageTimeout time.Duration // wall-clock deadline per page, default 20s
}

// PageText is the recognition outcome for one page. A failed or timed-out
// page carries its error and an empty Text.
type PageText struct {
	Index int
	Text  string
	Err   error
}

// Runner fans page bitmaps out to a bounded pool of workers, enforces a
// per-page deadline and reassembles results in page order.
//
// The deadline is enforced by abandonment: the runner stops waiting and
// cancels the page context. Backends driven through os/exec die with the
// context; in-process backends may keep consuming resources until the
// call naturally completes.
type Runner struct {
	engine Engine
	cfg    RunnerConfig
	logger *slog.Logger
}

// NewRunner creates a Runner, filling in config defaults.
func NewRunner(engine Engine, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{engine: engine, cfg: cfg, logger: logger}
}

// Run recognizes every page and returns one PageText per input page, in
// the original page order regardless of completion order. A single
// page's failure or timeout never aborts its siblings.
func (r *Runner) Run(ctx context.Context, pages []image.Image) ([]PageText, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	results := make([]PageText, len(pages))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := r.cfg.Workers
	if workers > len(pages) {
		workers = len(pages)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.recognizePage(ctx, i, pages[i])
			}
		}()
	}

	for i := range pages {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Mark undispatched pages so the caller sees why they
			// are empty.
			results[i] = PageText{Index: i, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) recognizePage(ctx context.Context, index int, page image.Image) PageText {
	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		r.logger.Warn("encoding page failed", "page", index+1, "error", err)
		return PageText{Index: index, Err: fmt.Errorf("encoding page %d: %w", index+1, err)}
	}

	pageCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := r.engine.Recognize(pageCtx, buf.Bytes())
		done <- outcome{text: text, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			r.logger.Warn("page recognition failed", "page", index+1, "error", out.err)
			return PageText{Index: index, Err: fmt.Errorf("page %d: %w", index+1, out.err)}
		}
		return PageText{Index: index, Text: Normalize(out.text)}
	case <-time.After(r.cfg.PageTimeout):
		// Abandon the call. The cancel kills exec-based engines; an
		// in-process recognition keeps running until it finishes on
		// its own, its result discarded.
		r.logger.Warn("page recognition timed out", "page", index+1, "timeout", r.cfg.PageTimeout)
		return PageText{Index: index, Err: fmt.Errorf("page %d: %w", index+1, ErrTimeout)}
	case <-ctx.Done():
		return PageText{Index: index, Err: ctx.Err()}
	}
}

// JoinText concatenates page texts with newlines in page order. Failed
// pages contribute nothing.
func JoinText(pages []PageText) string {
	var parts []string
	for _, p := range pages {
		if p.Err == nil && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}
