package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/afs"
	"golang.org/x/sync/errgroup"

	"escheck/internal/cache"
	"escheck/internal/diag"
	"escheck/internal/ecma"
	"escheck/internal/grammar"
	"escheck/internal/source"
)

type runner struct {
	profile ecma.Profile
	eval    *grammar.Evaluator
	fs      afs.Service
	cache   *cache.Store
	timeout time.Duration
	sink    Sink
	log     zerolog.Logger
}

func newRunner(profile ecma.Profile, opts *Options) *runner {
	r := &runner{
		profile: profile,
		eval:    grammar.NewEvaluator(),
		fs:      opts.FS,
		cache:   opts.Cache,
		timeout: opts.Timeout,
		sink:    opts.Sink,
		log:     zerolog.Nop(),
	}
	if r.fs == nil {
		r.fs = afs.New()
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if opts.Logger != nil {
		r.log = opts.Logger.With().Str("component", "driver").Logger()
	}
	return r
}

// Run checks every file of cfg that survives the skip filter and folds the
// per-file outcomes into a report ordered like the input.
//
// Read failures and timeouts become diagnostics of their own kind; only
// problems that make the run itself meaningless come back as errors:
// ErrNoFiles, an empty path, an unresolved profile or ctx cancellation.
func Run(ctx context.Context, cfg Config, opts Options) (diag.Report, error) {
	if !cfg.Profile.Valid() {
		return diag.Report{}, errors.New("driver: profile was not resolved")
	}
	files := Filter(cfg.Files, cfg.Skip)
	if len(files) == 0 {
		return diag.Report{}, ErrNoFiles
	}
	for i, f := range files {
		if strings.TrimSpace(f) == "" {
			return diag.Report{}, fmt.Errorf("driver: empty file path at position %d", i)
		}
	}

	r := newRunner(cfg.Profile, &opts)
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	r.log.Debug().
		Str("profile", cfg.Profile.String()).
		Int("files", len(files)).
		Int("skipped", len(cfg.Files)-len(files)).
		Int("jobs", jobs).
		Msg("check started")

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	// Результаты по индексу входа (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]*diag.Diagnostic, len(files))
	checked := make([]bool, len(files))

	for i, path := range files {
		r.emit(Event{File: path, Index: i, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				r.emit(Event{File: path, Index: i, Status: StatusSkipped})
				return nil
			}
			d, err := r.checkFile(gctx, i, path)
			if err != nil {
				// остановлено fail-fast'ом, а не вызывающим
				if gctx.Err() != nil && ctx.Err() == nil {
					r.emit(Event{File: path, Index: i, Status: StatusSkipped})
					return nil
				}
				return err
			}
			results[i] = d
			checked[i] = true
			if d != nil && opts.FailFast {
				r.log.Debug().Str("file", path).Msg("fail-fast: stopping after first diagnostic")
				stop()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return diag.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return diag.Report{}, err
	}

	n := 0
	for _, ok := range checked {
		if ok {
			n++
		}
	}
	report := diag.Aggregate(n, results)
	r.log.Debug().
		Int("checked", report.FilesChecked).
		Int("diagnostics", len(report.Diagnostics)).
		Bool("passed", report.Passed).
		Msg("check finished")
	return report, nil
}

// checkFile returns the diagnostic of one file, nil when it conforms.
func (r *runner) checkFile(ctx context.Context, index int, path string) (*diag.Diagnostic, error) {
	start := time.Now()
	r.emit(Event{File: path, Index: index, Status: StatusWorking})

	raw, err := readFile(ctx, r.fs, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.log.Debug().Str("file", path).Err(err).Msg("failed to load file")
		d := diag.NewIO(path, err)
		r.finish(path, index, d, false, start)
		return d, nil
	}

	prepared, hadHashbang := source.Prepare(raw, r.profile.AllowHashbang())
	if hadHashbang {
		r.log.Debug().Str("file", path).Bool("allowed", r.profile.AllowHashbang()).Msg("hashbang directive")
	}

	key, hit := r.lookup(path, prepared)
	if hit != nil {
		d := hit.diagnostic(path)
		r.finish(path, index, d, true, start)
		return d, nil
	}

	fctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.eval.Evaluate(fctx, prepared, r.profile)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, grammar.ErrTimeout) {
			r.log.Debug().Str("file", path).Dur("timeout", r.timeout).Msg("evaluation timed out")
			d := diag.NewTimeout(path, err)
			r.finish(path, index, d, false, start)
			return d, nil
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	v := verdictOf(res)
	r.store(path, key, v)
	d := (*verdict)(v).diagnostic(path)
	r.finish(path, index, d, false, start)
	return d, nil
}

func (r *runner) finish(path string, index int, d *diag.Diagnostic, cached bool, start time.Time) {
	evt := Event{File: path, Index: index, Status: StatusDone, Cached: cached, Elapsed: time.Since(start)}
	if d != nil {
		evt.Status = StatusFault
		evt.Err = errors.New(d.Message)
		r.log.Debug().
			Str("file", path).
			Str("code", d.Code.ID()).
			Str("kind", d.Kind().String()).
			Bool("cached", cached).
			Msg(d.Message)
	} else {
		r.log.Debug().Str("file", path).Bool("cached", cached).Msg("conforms")
	}
	r.emit(evt)
}

func (r *runner) emit(evt Event) {
	if r.sink != nil {
		r.sink.OnEvent(evt)
	}
}
