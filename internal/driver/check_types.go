package driver

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/afs"

	"escheck/internal/cache"
	"escheck/internal/ecma"
)

// DefaultTimeout bounds the evaluation of a single file.
const DefaultTimeout = 30 * time.Second

// ErrNoFiles is returned when nothing is left to check after skip filtering.
var ErrNoFiles = errors.New("no files were passed in to be checked")

// Config is one check request: which profile, which files, what to skip.
type Config struct {
	Profile ecma.Profile
	Files   []string
	Skip    []string
}

// Options tune how a check runs without changing what it decides.
type Options struct {
	Jobs     int           // <= 0 means runtime.GOMAXPROCS(0)
	FailFast bool          // stop scheduling files after the first diagnostic
	Timeout  time.Duration // per-file budget, <= 0 means DefaultTimeout
	Cache    *cache.Store  // nil disables verdict caching
	Sink     Sink          // progress events, may be nil
	Logger   *zerolog.Logger
	FS       afs.Service // nil means afs.New()
}

// Status captures progress state of one file.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being read or evaluated.
	StatusWorking Status = "working"
	// StatusDone indicates the file conforms.
	StatusDone Status = "done"
	// StatusFault indicates the file produced a diagnostic.
	StatusFault Status = "fault"
	// StatusSkipped indicates the file was never evaluated because the run stopped early.
	StatusSkipped Status = "skipped"
)

// Event reports progress for a file.
type Event struct {
	File    string
	Index   int
	Status  Status
	Cached  bool
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events. Implementations must be safe for concurrent use.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}
