package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schematiq/schematiq/internal/plan"
)

type fakePlanner struct {
	plans   []*plan.Plan
	failFor string
	created []string
}

func (f *fakePlanner) ListPlans(_ context.Context, ownerID string) ([]*plan.Plan, error) {
	var out []*plan.Plan
	for _, p := range f.plans {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlanner) CreatePlan(_ context.Context, ownerID, goal string, mode plan.Mode, _ *plan.Extras) (*plan.Plan, error) {
	if goal == f.failFor {
		return nil, plan.NewGenerationError("create_plan", errors.New("model down"))
	}
	p := &plan.Plan{ID: goal, OwnerID: ownerID, Title: goal, Mode: mode}
	f.plans = append(f.plans, p)
	f.created = append(f.created, goal)
	return p, nil
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/seed.yaml", []byte(`
plans:
  - goal: Learn Go
    mode: everyday
  - goal: Open a bakery
    mode: paid
`), 0644))

	f, err := NewLoader(fs).Load("/seed.yaml")

	require.NoError(t, err)
	assert.Equal(t, DefaultOwner, f.Owner)
	assert.Equal(t, []Entry{{Goal: "Learn Go", Mode: "everyday"}, {Goal: "Open a bakery", Mode: "paid"}}, f.Plans)
}

func TestLoad_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad-mode.yaml", []byte("plans:\n  - goal: x\n    mode: gold\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/no-goal.yaml", []byte("plans:\n  - mode: free\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/broken.yaml", []byte("plans: [\n"), 0644))
	l := NewLoader(fs)

	_, err := l.Load("/bad-mode.yaml")
	assert.ErrorIs(t, err, plan.ErrInvalidRequest)

	_, err = l.Load("/no-goal.yaml")
	assert.ErrorContains(t, err, "no goal")

	_, err = l.Load("/broken.yaml")
	assert.Error(t, err)

	_, err = l.Load("/missing.yaml")
	assert.Error(t, err)
}

func TestApply_Defaults(t *testing.T) {
	p := &fakePlanner{}

	n := Apply(context.Background(), p, Defaults())

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Apartment Deep Clean", "Launch a new SaaS product"}, p.created)
	assert.Equal(t, plan.ModeEveryday, p.plans[0].Mode)
	assert.Equal(t, plan.ModeStrategist, p.plans[1].Mode)
}

func TestApply_SkipsExistingTitles(t *testing.T) {
	p := &fakePlanner{plans: []*plan.Plan{{ID: "x", OwnerID: DefaultOwner, Title: "apartment deep clean"}}}

	n := Apply(context.Background(), p, Defaults())

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Launch a new SaaS product"}, p.created)

	assert.Zero(t, Apply(context.Background(), p, Defaults()), "second run is a no-op")
}

func TestApply_FailuresAreNotFatal(t *testing.T) {
	p := &fakePlanner{failFor: "Apartment Deep Clean"}

	n := Apply(context.Background(), p, Defaults())

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Launch a new SaaS product"}, p.created)
}
