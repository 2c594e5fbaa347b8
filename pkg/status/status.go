package status

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultChannelSize is the default buffer size for the status channel.
	// Large fan-outs emit one update per CAA record, so keep it generous.
	DefaultChannelSize = 1024

	// DefaultFlushTimeout is the default timeout for flushing remaining messages on shutdown
	DefaultFlushTimeout = 5 * time.Second
)

// Level represents the severity level of a status update
type Level string

const (
	// LevelInfo represents informational status updates
	LevelInfo Level = "info"

	// LevelProgress represents progress updates during operations
	LevelProgress Level = "progress"

	// LevelSuccess represents successful completion of operations
	LevelSuccess Level = "success"

	// LevelSkip represents work that was not needed (e.g. a record that already exists)
	LevelSkip Level = "skip"

	// LevelWarning represents warnings that don't prevent operation
	LevelWarning Level = "warning"

	// LevelError represents error conditions
	LevelError Level = "error"
)

// Update is a progress message about one zone (or the run as a whole when Zone is empty).
type Update struct {
	Level   Level
	Message string

	// Zone is the domain name being processed.
	Zone string

	// Step is the unit of work within the zone (e.g. "caa", "ssl_ca", "tiered_cache").
	Step string

	// Metadata contains optional additional structured data about the update
	Metadata map[string]any

	Timestamp time.Time
}

// NewUpdate creates a new Update with the current timestamp
func NewUpdate(level Level, message string) Update {
	return Update{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithZone sets the domain the update is about.
func (u Update) WithZone(zone string) Update {
	u.Zone = zone
	return u
}

// WithStep sets the step the update is about.
func (u Update) WithStep(step string) Update {
	u.Step = step
	return u
}

// WithMetadata adds metadata to the status update. The map is copied so
// updates built from a shared base do not alias each other.
func (u Update) WithMetadata(key string, value any) Update {
	md := make(map[string]any, len(u.Metadata)+1)
	for k, v := range u.Metadata {
		md[k] = v
	}
	md[key] = value
	u.Metadata = md
	return u
}

// Send sends a status update through the channel stored in the context (if present).
// It never blocks: the update is dropped if the channel is full.
func Send(ctx context.Context, update Update) {
	ch := getChannel(ctx)
	if ch == nil {
		return
	}

	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	select {
	case ch <- update:
	default:
	}
}

// Sendf sends a formatted status update message
func Sendf(ctx context.Context, level Level, format string, args ...any) {
	Send(ctx, NewUpdate(level, fmt.Sprintf(format, args...)))
}

// Info sends an informational status update
func Info(ctx context.Context, message string) {
	Send(ctx, NewUpdate(LevelInfo, message))
}

// Progress sends a progress status update
func Progress(ctx context.Context, message string) {
	Send(ctx, NewUpdate(LevelProgress, message))
}

// Success sends a success status update
func Success(ctx context.Context, message string) {
	Send(ctx, NewUpdate(LevelSuccess, message))
}

// Warning sends a warning status update
func Warning(ctx context.Context, message string) {
	Send(ctx, NewUpdate(LevelWarning, message))
}

// Error sends an error status update
func Error(ctx context.Context, message string) {
	Send(ctx, NewUpdate(LevelError, message))
}

// Handler is a function that processes status updates
type Handler func(Update)

// CleanupFunc closes the status channel and waits for the handler to drain it.
// It should be deferred immediately after calling StartHandler.
type CleanupFunc func()

// StartHandler creates a status channel, attaches it to the context, and starts a goroutine
// to process updates using the provided handler function.
//
// The returned cleanup function closes the channel and waits for the handler to
// finish, giving up after DefaultFlushTimeout.
//
//	ctx, cleanup := status.StartHandler(ctx, func(update status.Update) {
//	    slog.Info("Status", "message", update.Message)
//	})
//	defer cleanup()
func StartHandler(ctx context.Context, handler Handler) (context.Context, CleanupFunc) {
	return StartHandlerWithOptions(ctx, handler, DefaultChannelSize, DefaultFlushTimeout)
}

// StartHandlerWithOptions is like StartHandler but allows customizing the channel size and flush timeout
func StartHandlerWithOptions(ctx context.Context, handler Handler, channelSize int, flushTimeout time.Duration) (context.Context, CleanupFunc) {
	ch := make(chan Update, channelSize)
	ctx = WithChannel(ctx, ch)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for update := range ch {
			handler(update)
		}
	}()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			close(ch)

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(flushTimeout):
			}
		})
	}

	return ctx, cleanup
}
