package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"escheck/internal/cache"
	"escheck/internal/config"
	"escheck/internal/diag"
	"escheck/internal/diagfmt"
	"escheck/internal/driver"
	"escheck/internal/ecma"
	"escheck/internal/observ"
)

var versionLike = regexp.MustCompile(`^es\d+$`)

type checkFlags struct {
	module        bool
	allowHashBang bool
	not           []string
	files         []string
	debug         bool
	format        string
	jobs          int
	failFast      bool
	timeout       time.Duration
	cache         bool
	clearCache    bool
	ui            string
	timings       bool
}

func addCheckFlags(cmd *cobra.Command) {
	f := &checkFlags{}
	flags := cmd.Flags()
	flags.BoolVar(&f.module, "module", false, "parse files as ES modules (sourceType: module)")
	flags.BoolVar(&f.allowHashBang, "allow-hash-bang", false, "accept a leading #! line")
	flags.StringSliceVar(&f.not, "not", nil, "skip files whose path contains any of these comma-separated substrings")
	flags.StringSliceVar(&f.files, "files", nil, "comma-separated file globs, in addition to positional ones")
	flags.BoolVar(&f.debug, "debug", false, "log every step to stderr")
	flags.StringVar(&f.format, "format", string(diagfmt.FormatJSON), "report format (json|pretty|yaml|short)")
	flags.IntVarP(&f.jobs, "jobs", "j", 0, "max parallel files (0=auto)")
	flags.BoolVar(&f.failFast, "fail-fast", false, "stop after the first failing file")
	flags.DurationVar(&f.timeout, "timeout", driver.DefaultTimeout, "per-file evaluation budget")
	flags.BoolVar(&f.cache, "cache", false, "reuse verdicts from the on-disk cache")
	flags.BoolVar(&f.clearCache, "clear-cache", false, "drop the on-disk cache before checking")
	flags.StringVar(&f.ui, "ui", string(uiModeAuto), "progress UI mode (auto|on|off)")
	flags.BoolVar(&f.timings, "timings", false, "print phase timings to stderr")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, args, f)
	}
}

// splitArgs separates an optional leading version id from file patterns.
// The first argument counts as a version when it is a known id or looks like one.
func splitArgs(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	first := strings.ToLower(strings.TrimSpace(args[0]))
	if ecma.Known(first) || versionLike.MatchString(first) {
		return args[0], args[1:]
	}
	return "", args
}

func runCheck(cmd *cobra.Command, args []string, f *checkFlags) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	outColor, err := colorEnabled(cmd, stdout)
	if err != nil {
		return err
	}
	errColor, err := colorEnabled(cmd, stderr)
	if err != nil {
		return err
	}
	format, err := diagfmt.ParseFormat(f.format)
	if err != nil {
		return err
	}
	mode, err := readUIMode(f.ui)
	if err != nil {
		return err
	}
	log := newLogger(stderr, f.debug, errColor)

	var timer *observ.Timer
	if f.timings {
		timer = observ.NewTimer()
	}
	out := reportWriter{format: format, stdout: stdout, stderr: stderr, color: outColor}

	var (
		settings config.Settings
		profile  ecma.Profile
		files    []string
	)
	var setupErr error
	timer.Track("config", func() (int, string) {
		settings, profile, setupErr = resolveSettings(cmd, args, f, &log)
		if setupErr != nil {
			return 0, ""
		}
		sources := "defaults"
		if len(settings.Sources) > 0 {
			sources = strings.Join(settings.Sources, ", ")
		}
		return 0, fmt.Sprintf("%s from %s", profile, sources)
	})
	if setupErr != nil {
		return out.failure(setupErr)
	}

	timer.Track("glob", func() (int, string) {
		exp, err := config.Expand(settings.Files)
		if err != nil {
			setupErr = err
			return 0, ""
		}
		for _, p := range exp.Unmatched {
			log.Warn().Str("pattern", p).Msg("pattern matched no files")
		}
		files = exp.Files
		if len(exp.Unmatched) > 0 {
			return len(files), fmt.Sprintf("%d patterns unmatched", len(exp.Unmatched))
		}
		return len(files), ""
	})
	if setupErr != nil {
		return out.failure(setupErr)
	}

	opts := driver.Options{
		Jobs:     f.jobs,
		FailFast: f.failFast,
		Timeout:  f.timeout,
		Logger:   &log,
	}
	if f.cache || f.clearCache {
		opts.Cache = openCache(&log, f.clearCache)
		if !f.cache {
			opts.Cache = nil
		}
	}
	cfg := driver.Config{Profile: profile, Files: files, Skip: settings.Not}

	var report diag.Report
	var runErr error
	timer.Track("check", func() (int, string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if shouldUseTUI(mode, f.debug) {
			title := fmt.Sprintf("checking against %s", profile)
			report, runErr = runCheckWithUI(ctx, title, cfg, opts)
		} else {
			report, runErr = driver.Run(ctx, cfg, opts)
		}
		return report.FilesChecked, fmt.Sprintf("%d failing", len(report.Diagnostics))
	})
	if timer != nil {
		defer fmt.Fprint(stderr, timer.Summary())
	}
	if runErr != nil {
		return out.failure(runErr)
	}
	if ioErr := report.IOErrors(); ioErr != nil {
		log.Debug().Err(ioErr).Msg("some files were not evaluated")
	}
	return out.report(report)
}

func resolveSettings(cmd *cobra.Command, args []string, f *checkFlags, log *zerolog.Logger) (config.Settings, ecma.Profile, error) {
	versionArg, patterns := splitArgs(args)
	flagLayer := &config.Layer{
		Source:      "flags",
		EcmaVersion: versionArg,
		Files:       append(config.SplitList(f.files), patterns...),
		Not:         config.SplitList(f.not),
	}
	if cmd.Flags().Changed("module") {
		flagLayer.Module = config.Bool(f.module)
	}
	if cmd.Flags().Changed("allow-hash-bang") {
		flagLayer.AllowHashBang = config.Bool(f.allowHashBang)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return config.Settings{}, ecma.Profile{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	rc, err := config.LoadRC(cwd)
	if err != nil {
		return config.Settings{}, ecma.Profile{}, err
	}
	manifest, _, err := config.LoadManifest(cwd)
	if err != nil {
		return config.Settings{}, ecma.Profile{}, err
	}

	settings := config.Merge(flagLayer, rc, manifest)
	log.Debug().
		Str("ecmaVersion", settings.EcmaVersion).
		Bool("module", settings.Module).
		Bool("allowHashBang", settings.AllowHashBang).
		Strs("files", settings.Files).
		Strs("not", settings.Not).
		Strs("sources", settings.Sources).
		Msg("configuration")

	// версия проверяется до раскрытия шаблонов, чтобы не трогать файлы зря
	profile, err := settings.Profile()
	if err != nil {
		return settings, ecma.Profile{}, err
	}
	log.Debug().Str("profile", profile.String()).Msg("resolved profile")
	return settings, profile, nil
}

func openCache(log *zerolog.Logger, clear bool) *cache.Store {
	store, err := cache.Open("escheck")
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		return nil
	}
	if clear {
		if err := store.DropAll(); err != nil {
			log.Warn().Err(err).Msg("failed to clear cache")
		}
	}
	log.Debug().Str("dir", store.Dir()).Msg("verdict cache")
	return store
}

type reportWriter struct {
	format diagfmt.Format
	stdout io.Writer
	stderr io.Writer
	color  bool
}

func (w reportWriter) report(report diag.Report) error {
	res := diagfmt.BuildResult(report, diagfmt.PathModeAsGiven, "")
	var err error
	switch w.format {
	case diagfmt.FormatPretty:
		err = diagfmt.Pretty(w.stdout, report, diagfmt.PrettyOpts{Color: w.color, Lines: diagfmt.DiskLines()})
	case diagfmt.FormatShort:
		err = diagfmt.Short(w.stdout, report, diagfmt.PathModeAsGiven, "")
	default:
		err = w.structured(res)
	}
	if err != nil {
		return err
	}
	if code := res.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// failure renders a run that produced no report and maps it to errNo.
func (w reportWriter) failure(err error) error {
	errNo := diagfmt.ErrNoUnexpected
	if errors.Is(err, driver.ErrNoFiles) {
		errNo = diagfmt.ErrNoNoFiles
	}
	res := diagfmt.ErrorResult(errNo, err)
	switch w.format {
	case diagfmt.FormatPretty, diagfmt.FormatShort:
		fmt.Fprintf(w.stderr, "escheck: %v\n", err)
	default:
		if werr := w.structured(res); werr != nil {
			return werr
		}
	}
	return &exitError{code: res.ExitCode()}
}

func (w reportWriter) structured(res diagfmt.Result) error {
	if w.format == diagfmt.FormatYAML {
		return diagfmt.YAML(w.stdout, res)
	}
	return diagfmt.JSON(w.stdout, res, diagfmt.JSONOpts{Color: w.color})
}
