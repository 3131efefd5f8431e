// Package schedule loads versioned fee schedules from TOML. Defaults are
// embedded in the binary; an override directory replaces them per venue.
package schedule

import (
	"context"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
)

//go:embed defaults/*.toml
var defaultsFS embed.FS

// Loader reads schedules once at startup.
type Loader struct {
	dir    string
	venues []domain.Venue
	log    logger.LoggerInterface
}

// NewLoader creates a loader. dir may be empty (embedded defaults only);
// venues may be empty (all schedules).
func NewLoader(dir string, venues []string, log logger.LoggerInterface) *Loader {
	l := &Loader{dir: dir, log: log}
	for _, v := range venues {
		if v = strings.TrimSpace(v); v != "" {
			l.venues = append(l.venues, domain.ParseVenue(v))
		}
	}
	return l
}

// Load returns the merged schedules ordered by venue.
func (l *Loader) Load(ctx context.Context) ([]domain.FeeSchedule, error) {
	byVenue := make(map[domain.Venue]domain.FeeSchedule)

	embedded, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		return nil, apperror.Internal(apperror.CodeScheduleLoadFailed, "embedded defaults", err)
	}
	if err := l.readDir(ctx, embedded, "embedded", byVenue); err != nil {
		return nil, err
	}

	if l.dir != "" {
		info, err := os.Stat(l.dir)
		if err != nil || !info.IsDir() {
			return nil, apperror.New(apperror.CodeScheduleLoadFailed,
				apperror.WithContext("schedule_dir="+l.dir), apperror.WithCause(err))
		}
		if err := l.readDir(ctx, os.DirFS(l.dir), l.dir, byVenue); err != nil {
			return nil, err
		}
	}

	out := make([]domain.FeeSchedule, 0, len(byVenue))
	for venue, s := range byVenue {
		if len(l.venues) > 0 && !slices.Contains(l.venues, venue) {
			continue
		}
		out = append(out, s)
	}
	for _, v := range l.venues {
		if _, ok := byVenue[v]; !ok {
			return nil, apperror.New(apperror.CodeScheduleLoadFailed,
				apperror.WithContext("no schedule for enabled venue "+string(v)))
		}
	}

	slices.SortFunc(out, func(a, b domain.FeeSchedule) int {
		return strings.Compare(string(a.Venue), string(b.Venue))
	})
	return out, nil
}

func (l *Loader) readDir(ctx context.Context, fsys fs.FS, origin string, into map[domain.Venue]domain.FeeSchedule) error {
	names, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return apperror.Internal(apperror.CodeScheduleLoadFailed, origin, err)
	}
	slices.Sort(names)

	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return apperror.Internal(apperror.CodeScheduleLoadFailed, filepath.Join(origin, name), err)
		}
		s, err := Parse(name, data)
		if err != nil {
			return apperror.New(apperror.CodeInvalidSchedule,
				apperror.WithContext(filepath.Join(origin, name)), apperror.WithCause(err))
		}

		if prev, ok := into[s.Venue]; ok {
			l.log.Info(ctx, "fee schedule overridden",
				"venue", s.Venue, "from_version", prev.Version, "to_version", s.Version, "origin", origin)
		} else {
			l.log.Debug(ctx, "fee schedule loaded",
				"venue", s.Venue, "version", s.Version, "model", s.Model, "origin", origin)
		}
		into[s.Venue] = s
	}
	return nil
}
