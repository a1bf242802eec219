package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	confirm "github.com/goliatone/go-confirm"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// FilesystemSpec pairs a SQL dialect with the filesystem holding its
// migration files.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// Registration captures the resolved migration sources handed to a host
// migration runner.
type Registration struct {
	SourceLabel string
	Dialects    []string
	Filesystems []FilesystemSpec
}

// RegisterFunc is supplied by the host migration runner.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// WithDialects restricts registration to the named dialects.
func WithDialects(dialects ...string) Option {
	return func(r *Registration) {
		next := make([]string, 0, len(dialects))
		for _, dialect := range dialects {
			trimmed := strings.TrimSpace(strings.ToLower(dialect))
			if trimmed == "" || slices.Contains(next, trimmed) {
				continue
			}
			next = append(next, trimmed)
		}
		if len(next) > 0 {
			r.Dialects = next
		}
	}
}

// Filesystems resolves the per-dialect migration filesystems from the
// embedded tree, or from an override root when one is supplied.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := confirm.GetCoreMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	const basePath = "data/sql/migrations"
	base, err := fs.Sub(root, basePath)
	if err != nil {
		return nil, fmt.Errorf("migrations: %s not found: %w", basePath, err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: basePath + "/sqlite", FS: sqliteFS},
	}

	for _, fsys := range filesystems {
		matches, globErr := fs.Glob(fsys.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", fsys.Dialect, fsys.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", fsys.Dialect, fsys.Path)
		}
	}

	return filesystems, nil
}

// Register resolves the embedded migration filesystems and hands each
// requested dialect to the host runner.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel: "go-confirm",
		Dialects:    []string{DialectPostgres, DialectSQLite},
	}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	for _, fsys := range reg.Filesystems {
		if !slices.Contains(reg.Dialects, fsys.Dialect) {
			continue
		}
		if err := registerFn(ctx, fsys.Dialect, reg.SourceLabel, fsys.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", fsys.Dialect, fsys.Path, err)
		}
	}

	return reg, nil
}
