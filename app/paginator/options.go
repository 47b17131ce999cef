package paginator

import "time"

const (
	// DefaultTimeout is how long the controls stay live without a page change.
	DefaultTimeout = 5 * time.Minute
	// MaxTimeout is the longest inactivity timeout a session may request.
	MaxTimeout = 15 * time.Minute
)

// Options configures a single paginator session.
type Options struct {
	// ShowPageNumbers appends "Page X of N" to the rendered footer.
	ShowPageNumbers bool
	// Cycling wraps next/previous around at the first and last page.
	Cycling bool
	// Timeout disables the controls after this long without a page change.
	Timeout time.Duration
	// StartPage is the 1-based page shown first.
	StartPage int
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	return Options{
		ShowPageNumbers: true,
		Cycling:         false,
		Timeout:         DefaultTimeout,
		StartPage:       1,
	}
}

// Option mutates Options during construction.
type Option func(*Options)

// WithOptions replaces every field, typically with defaults read from config.
func WithOptions(o Options) Option {
	return func(opts *Options) {
		*opts = o
	}
}

func WithShowPageNumbers(show bool) Option {
	return func(opts *Options) {
		opts.ShowPageNumbers = show
	}
}

func WithCycling(cycling bool) Option {
	return func(opts *Options) {
		opts.Cycling = cycling
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

func WithStartPage(page int) Option {
	return func(opts *Options) {
		opts.StartPage = page
	}
}
