package alloc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// Runtime debug flag for allocation logging - controlled by HMM_LOG_ALLOC env var.
var logAlloc = os.Getenv("HMM_LOG_ALLOC") != ""

// Config tunes the sizing policy of an Allocator. The arena capacity is a
// property of the arena itself.
type Config struct {
	// InitMargin is the payload reserved for the seed free block by Init,
	// before rounding to format.MinBlockSize.
	InitMargin int

	// ShrinkThreshold is the smallest footprint a trailing free block needs
	// before the break is retracted over it.
	ShrinkThreshold int

	// ShrinkFloor is the payload margin above one header the break never
	// drops below when shrinking.
	ShrinkFloor int

	// Logger receives the init summary and debug records. Nil means discard,
	// or stderr at debug level when HMM_LOG_ALLOC is set.
	Logger *slog.Logger
}

// DefaultConfig matches the format package constants.
var DefaultConfig = Config{
	InitMargin:      format.InitMargin,
	ShrinkThreshold: format.ShrinkThreshold,
	ShrinkFloor:     format.ShrinkFloor,
}

func (c *Config) validate() error {
	if c.InitMargin <= 0 {
		return fmt.Errorf("%w: init margin must be positive, got %d", ErrBadConfig, c.InitMargin)
	}
	if c.ShrinkThreshold < 0 {
		return fmt.Errorf("%w: negative shrink threshold %d", ErrBadConfig, c.ShrinkThreshold)
	}
	if c.ShrinkFloor < 0 {
		return fmt.Errorf("%w: negative shrink floor %d", ErrBadConfig, c.ShrinkFloor)
	}
	return nil
}

// seedSize is the break offset right after Init.
func (c *Config) seedSize() int {
	return format.Align8(format.HeaderSize + c.InitMargin)
}

// minBreak is the lowest break a shrink may leave behind.
func (c *Config) minBreak() int {
	return format.HeaderSize + c.ShrinkFloor
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
