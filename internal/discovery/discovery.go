// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// DescriptorFileName is the file that marks a directory as a recipe.
const DescriptorFileName = "recipe.yml"

type (
	// Scanner finds recipe directories below a set of roots.
	Scanner struct {
		descriptor string
		logger     *slog.Logger
	}

	// Option configures a Scanner.
	Option func(*Scanner)
)

// WithDescriptorFileName overrides the descriptor file name (recipe.yml).
func WithDescriptorFileName(name string) Option {
	return func(s *Scanner) { s.descriptor = name }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner creates a Scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{descriptor: DescriptorFileName, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks roots in order and returns every directory containing a
// descriptor file. Roots that do not exist are skipped. Within a root the
// order is the walk order. A name already seen under an earlier root (or
// earlier in the same root) is dropped with a collision warning.
//
// Scan only fails when ctx is canceled; filesystem problems below a root are
// reported as diagnostics.
func (s *Scanner) Scan(ctx context.Context, roots []string) (Result, error) {
	var res Result
	seen := make(map[string]string)

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}

		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Debug("scan directory does not exist", "dir", abs)
				continue
			}
			res.Diagnostics = append(res.Diagnostics, newWarning(CodeWalkFailed, abs,
				fmt.Sprintf("cannot read scan directory %s", abs), err))
			continue
		}
		if !info.IsDir() {
			res.Diagnostics = append(res.Diagnostics, newWarning(CodeRootNotDirectory, abs,
				fmt.Sprintf("scan directory %s is not a directory", abs), nil))
			continue
		}

		resolved := walkRoot(abs)
		walkErr := filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			path = underRoot(abs, resolved, path)
			if err != nil {
				res.Diagnostics = append(res.Diagnostics, newWarning(CodeWalkFailed, path,
					fmt.Sprintf("skipping unreadable path %s", path), err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || d.Name() != s.descriptor {
				return nil
			}

			dir := filepath.Dir(path)
			name := filepath.Base(dir)
			if first, dup := seen[name]; dup {
				res.Diagnostics = append(res.Diagnostics, newWarning(CodeNameCollision, dir,
					fmt.Sprintf("recipe %q at %s is shadowed by %s", name, dir, first), nil))
				return nil
			}
			seen[name] = dir
			res.Locations = append(res.Locations, Location{Name: name, Dir: dir, Root: abs})
			return nil
		})
		if walkErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, fmt.Errorf("scan canceled: %w", ctxErr)
			}
			res.Diagnostics = append(res.Diagnostics, newWarning(CodeWalkFailed, abs,
				fmt.Sprintf("scan of %s stopped early", abs), walkErr))
		}
	}

	s.logger.Debug("recipe scan complete", "roots", len(roots), "recipes", len(res.Locations),
		"diagnostics", len(res.Diagnostics))
	return res, nil
}

// walkRoot resolves a symlinked scan directory, which WalkDir would not
// descend into otherwise.
func walkRoot(abs string) string {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// underRoot maps a path found below resolved back below abs, so recipe paths
// keep the configured spelling.
func underRoot(abs, resolved, path string) string {
	if resolved == abs {
		return path
	}
	rel, err := filepath.Rel(resolved, path)
	if err != nil {
		return path
	}
	return filepath.Join(abs, rel)
}

// Warnings returns the diagnostics with warning severity.
func (r Result) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}
