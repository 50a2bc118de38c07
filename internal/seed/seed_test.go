package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/model/modeltest"
)

func TestDefaultFixtureParses(t *testing.T) {
	t.Parallel()

	f := Default()
	require.Len(t, f.Suppliers, 3)
	assert.Equal(t, "548.5", f.Suppliers[0].Animals[0].LiveWeightKg.String())
	require.NotNil(t, f.Suppliers[2].Active)
	assert.False(t, *f.Suppliers[2].Active)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Load(strings.NewReader("suppliers:\n  - name: X\n    colour: red\n"))
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	t.Parallel()

	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Suppliers)
}

func TestApply_IsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := modeltest.New()

	res, err := Apply(ctx, b, Default())
	require.NoError(t, err)
	assert.Equal(t, Result{Suppliers: 3, Animals: 12}, res)

	lairage, err := b.ListAnimals(ctx, model.ListQuery{Status: "lairage"})
	require.NoError(t, err)
	assert.Len(t, lairage, 3)

	again, err := Apply(ctx, b, Default())
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 12}, again)
}

func TestApply_BadStatusFails(t *testing.T) {
	t.Parallel()

	f, err := Load(strings.NewReader(`
suppliers:
  - name: Hill Farm
    animals:
      - {tag: A1, species: sheep, live_weight_kg: "40", status: slaughtered}
`))
	require.NoError(t, err)

	_, err = Apply(context.Background(), modeltest.New(), f)
	assert.ErrorIs(t, err, model.ErrInvalid)
}
