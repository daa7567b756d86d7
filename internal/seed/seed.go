// Package seed creates starter plans for the development user.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/schematiq/schematiq/internal/plan"
)

// DefaultOwner is the development user that receives seed plans.
const DefaultOwner = "mock_user_123"

// Entry is one plan to generate.
type Entry struct {
	Goal string `yaml:"goal"`
	Mode string `yaml:"mode"`
}

// File is the seed file format.
//
//	owner: mock_user_123
//	plans:
//	  - goal: Apartment Deep Clean
//	    mode: free
type File struct {
	Owner string  `yaml:"owner"`
	Plans []Entry `yaml:"plans"`
}

// Defaults returns the built-in seed set.
func Defaults() *File {
	return &File{
		Owner: DefaultOwner,
		Plans: []Entry{
			{Goal: "Apartment Deep Clean", Mode: string(plan.ModeEveryday)},
			{Goal: "Launch a new SaaS product", Mode: string(plan.ModeStrategist)},
		},
	}
}

// Loader reads seed files through an afero filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a Loader over fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// NewOsLoader creates a Loader over the real filesystem.
func NewOsLoader() *Loader {
	return NewLoader(afero.NewOsFs())
}

// Load parses the seed file at path. An empty owner falls back to
// DefaultOwner and every mode is checked.
func (l *Loader) Load(path string) (*File, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if f.Owner == "" {
		f.Owner = DefaultOwner
	}
	for i, e := range f.Plans {
		if strings.TrimSpace(e.Goal) == "" {
			return nil, fmt.Errorf("seed file %s: plan %d has no goal", path, i)
		}
		if _, err := plan.ParseMode(e.Mode); err != nil {
			return nil, fmt.Errorf("seed file %s: plan %d: %w", path, i, err)
		}
	}
	return &f, nil
}

// Planner is the part of the lifecycle engine seeding needs.
type Planner interface {
	ListPlans(ctx context.Context, ownerID string) ([]*plan.Plan, error)
	CreatePlan(ctx context.Context, ownerID, goal string, mode plan.Mode, extras *plan.Extras) (*plan.Plan, error)
}

// Apply generates every entry whose goal is not already a plan title for
// the owner. Failures are logged and skipped; the count of created plans
// is returned.
func Apply(ctx context.Context, p Planner, f *File) int {
	existing, err := p.ListPlans(ctx, f.Owner)
	if err != nil {
		slog.Warn("seeding skipped: cannot list plans", "error", err)
		return 0
	}
	titles := make(map[string]bool, len(existing))
	for _, e := range existing {
		titles[strings.ToLower(e.Title)] = true
	}

	created := 0
	for _, e := range f.Plans {
		if titles[strings.ToLower(e.Goal)] {
			slog.Debug("seed plan already present", "goal", e.Goal)
			continue
		}
		mode, err := plan.ParseMode(e.Mode)
		if err != nil {
			slog.Warn("skipping seed plan", "goal", e.Goal, "error", err)
			continue
		}
		if _, err := p.CreatePlan(ctx, f.Owner, e.Goal, mode, nil); err != nil {
			slog.Warn("seed plan generation failed", "goal", e.Goal, "error", err)
			continue
		}
		titles[strings.ToLower(e.Goal)] = true
		created++
	}
	slog.Info("seeding complete", "owner", f.Owner, "created", created)
	return created
}
