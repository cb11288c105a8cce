package service

import (
	"context"
	"strings"
	"testing"

	"design-pro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.categories.Create(ctx, admin, "  Interior ")
	require.NoError(t, err)
	assert.Equal(t, "Interior", c.Name)

	var verr *ValidationError
	_, err = f.categories.Create(ctx, admin, "Interior")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category already exists", verr.Fields["name"])

	_, err = f.categories.Create(ctx, admin, "   ")
	require.ErrorAs(t, err, &verr)

	_, err = f.categories.Create(ctx, admin, strings.Repeat("x", 101))
	require.ErrorAs(t, err, &verr)

	_, err = f.categories.Create(ctx, alice, "Exterior")
	assert.ErrorIs(t, err, ErrForbidden)

	items, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Category{*c}, items)
}

func TestCategoryDeleteCascadesToRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doomed, err := f.categories.Create(ctx, admin, "Kitchen")
	require.NoError(t, err)
	kept, err := f.categories.Create(ctx, admin, "Bathroom")
	require.NoError(t, err)

	a := f.create(t, alice, "a", doomed.ID)
	b := f.create(t, bob, "b", doomed.ID)
	b, err = f.requests.Transition(ctx, admin, b.ID, TransitionInput{Status: "done", DesignImage: image("d.png", 10)})
	require.NoError(t, err)
	other := f.create(t, alice, "other", kept.ID)
	loose := f.create(t, alice, "loose", "")

	require.NoError(t, f.categories.Delete(ctx, admin, doomed.ID))

	assert.Nil(t, f.get(t, a.ID))
	assert.Nil(t, f.get(t, b.ID))
	assert.NotNil(t, f.get(t, other.ID))
	assert.NotNil(t, f.get(t, loose.ID))
	assert.False(t, f.store.Has(a.Photo))
	assert.False(t, f.store.Has(b.DesignImage))
	assert.True(t, f.store.Has(other.Photo))

	assert.ErrorIs(t, f.categories.Delete(ctx, admin, doomed.ID), ErrNotFound)
	assert.ErrorIs(t, f.categories.Delete(ctx, alice, kept.ID), ErrForbidden)
}
