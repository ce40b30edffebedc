package main

import (
	"context"
	"errors"
	"testing"

	"github.com/cor0nius/localservices/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inferenceCategories() []Category {
	return []Category{
		{ID: 1, Name: "Plumber", Slug: "plumber", SortOrder: 10},
		{ID: 2, Name: "Electrician", Slug: "electrician", SortOrder: 20},
		{ID: 5, Name: "HVAC", Slug: "hvac", SortOrder: 50},
		{ID: 7, Name: "Appliance Repair", Slug: "appliance-repair", SortOrder: 70},
		{ID: 9, Name: "Landscaping", Slug: "landscaping", SortOrder: 90},
		{ID: 10, Name: "Cleaning", Slug: "cleaning", SortOrder: 100},
		{ID: 11, Name: "Carpet Cleaning", Slug: "carpet", SortOrder: 110},
	}
}

func TestFindCategory(t *testing.T) {
	cats := inferenceCategories()

	assert.Equal(t, int64(2), findCategory(cats, "2").ID)
	assert.Equal(t, int64(5), findCategory(cats, " HVAC ").ID)
	assert.Equal(t, int64(7), findCategory(cats, "appliance-repair").ID)
	assert.Nil(t, findCategory(cats, "99"))
	assert.Nil(t, findCategory(cats, "roofing"))
	assert.Nil(t, findCategory(cats, ""))
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantID      int64
		wantConsume bool
	}{
		{name: "exact name", query: "  electrician ", wantID: 2, wantConsume: true},
		{name: "keyword", query: "leaky plumbing", wantID: 1, wantConsume: true},
		{name: "keyword maps to slug", query: "furnace heating", wantID: 5, wantConsume: true},
		{name: "keyword maps to multi-word slug", query: "appliances", wantID: 7, wantConsume: true},
		{name: "first keyword wins", query: "electric heat", wantID: 2, wantConsume: true},
		{name: "keyword without category falls through", query: "roof", wantID: 0},
		{name: "unique partial name", query: "landsc", wantID: 9},
		{name: "partial name keeps query", query: "carpet", wantID: 11},
		{name: "ambiguous partial name", query: "ea", wantID: 0},
		{name: "nothing", query: "bakery", wantID: 0},
		{name: "empty", query: "   ", wantID: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, consume := inferCategory(inferenceCategories(), tc.query)
			if tc.wantID == 0 {
				assert.Nil(t, got)
				assert.False(t, consume)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.wantID, got.ID)
			assert.Equal(t, tc.wantConsume, consume)
		})
	}
}

func TestListActiveCategories(t *testing.T) {
	tc := newTestAPIConfig(t)
	tc.mockDB.ListActiveCategoriesFunc = func(ctx context.Context) ([]database.ServiceCategory, error) {
		return testCategories(), nil
	}

	cats, err := tc.listActiveCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Category{
		{ID: 1, Name: "Plumber", Slug: "plumber", SortOrder: 10},
		{ID: 2, Name: "Electrician", Slug: "electrician", SortOrder: 20},
		{ID: 3, Name: "Cleaning", Slug: "cleaning", SortOrder: 30},
	}, cats)

	tc.mockDB.ListActiveCategoriesFunc = func(ctx context.Context) ([]database.ServiceCategory, error) {
		return nil, errors.New("timeout")
	}
	_, err = tc.listActiveCategories(context.Background())
	assert.Error(t, err)
}
