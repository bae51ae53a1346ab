package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/sales"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/watchtower"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSales struct {
	sales.Service
	overview *sales.Overview
	err      error
}

func (s stubSales) Overview(context.Context, filters.FilterSet) (*sales.Overview, error) {
	return s.overview, s.err
}

type stubTower struct {
	watchtower.Service
	overview *watchtower.Overview
	err      error
}

func (s stubTower) Overview(context.Context, filters.FilterSet) (*watchtower.Overview, error) {
	return s.overview, s.err
}

func TestSummaryBothSections(t *testing.T) {
	svc, err := NewService(
		stubSales{overview: &sales.Overview{OverallSales: 450}},
		stubTower{overview: &watchtower.Overview{Offtake: types.DerivedMetric{Value: 12}}},
		nil,
	)
	require.NoError(t, err)

	got, err := svc.Summary(context.Background(), filters.FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, 450.0, got.Sales.OverallSales)
	assert.Equal(t, 12.0, got.Watchtower.Offtake.Value)
	assert.Empty(t, got.Errors)
}

func TestSummaryPartialFailure(t *testing.T) {
	svc, err := NewService(
		stubSales{overview: &sales.Overview{OverallSales: 450}},
		stubTower{err: pkgerrors.Dependency(errors.New("bigquery: 503"), "bigquery aggregate failed")},
		nil,
	)
	require.NoError(t, err)

	got, err := svc.Summary(context.Background(), filters.FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, 450.0, got.Sales.OverallSales)
	assert.Nil(t, got.Watchtower)
	assert.Equal(t, SectionError{Code: pkgerrors.CodeDependency, Message: "dependency unavailable"}, got.Errors[SectionWatchtower])

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "watchtower")
	assert.Nil(t, decoded["watchtower"])
}

func TestSummaryBothFail(t *testing.T) {
	boom := errors.New("row store down")
	svc, err := NewService(stubSales{err: boom}, stubTower{err: errors.New("column store down")}, nil)
	require.NoError(t, err)

	_, err = svc.Summary(context.Background(), filters.FilterSet{})
	assert.ErrorIs(t, err, boom)
}

func TestNewServiceRequiresSources(t *testing.T) {
	_, err := NewService(nil, stubTower{}, nil)
	assert.Error(t, err)
}
