// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the default maximum document size (1MB).
const DefaultMaxFileSize int64 = 1 << 20

type (
	// validateOptions holds configuration for validation.
	validateOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}

	// Option configures validation behavior.
	Option func(*validateOptions)
)

// defaultOptions returns the default validation options.
func defaultOptions() validateOptions {
	return validateOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
		filename:    "<input>",
	}
}

// WithMaxFileSize sets the maximum allowed document size.
func WithMaxFileSize(size int64) Option {
	return func(o *validateOptions) {
		o.maxFileSize = size
	}
}

// WithConcrete sets whether all values must be concrete after unification.
// Default is true.
func WithConcrete(concrete bool) Option {
	return func(o *validateOptions) {
		o.concrete = concrete
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *validateOptions) {
		o.filename = name
	}
}
