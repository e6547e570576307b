package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icetimehq/icetime-api/internal/dto"
	"github.com/icetimehq/icetime-api/internal/models"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

type mockIceTimeReader struct {
	views     []models.IceTimeView
	err       error
	gotFilter models.IceTimeFilter
	calls     int
}

func (m *mockIceTimeReader) ListViews(ctx context.Context, filter models.IceTimeFilter) ([]models.IceTimeView, error) {
	m.calls++
	m.gotFilter = filter
	return m.views, m.err
}

func TestIceTimeListTypeFlags(t *testing.T) {
	reader := &mockIceTimeReader{views: []models.IceTimeView{{Type: models.TypeOpenSkate}}}
	svc := NewIceTimeService(reader, nil, nil, nil)

	views, err := svc.List(context.Background(), dto.IceTimeQuery{OpenSkate: true, StickTime: true})
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, []models.IceTimeType{models.TypeOpenSkate, models.TypeStickTime}, reader.gotFilter.Types)
	assert.Nil(t, reader.gotFilter.DateFrom)
}

func TestIceTimeListNoFlagsMeansAllTypes(t *testing.T) {
	reader := &mockIceTimeReader{}
	svc := NewIceTimeService(reader, nil, nil, nil)

	views, err := svc.List(context.Background(), dto.IceTimeQuery{})
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, reader.gotFilter.Types)
}

func TestIceTimeListDateFilters(t *testing.T) {
	reader := &mockIceTimeReader{}
	svc := NewIceTimeService(reader, nil, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2023, time.September, 4, 15, 30, 0, 0, time.UTC)
	}

	tests := []struct {
		filter string
		from   string
		to     string
	}{
		{"today", "2023-09-04", "2023-09-04"},
		{"tomorrow", "2023-09-05", "2023-09-05"},
		{"thisWeek", "2023-09-04", "2023-09-10"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			_, err := svc.List(context.Background(), dto.IceTimeQuery{DateFilter: tt.filter})
			require.NoError(t, err)
			require.NotNil(t, reader.gotFilter.DateFrom)
			require.NotNil(t, reader.gotFilter.DateTo)
			assert.Equal(t, tt.from, reader.gotFilter.DateFrom.Format("2006-01-02"))
			assert.Equal(t, tt.to, reader.gotFilter.DateTo.Format("2006-01-02"))
		})
	}
}

func TestIceTimeListRejectsUnknownDateFilter(t *testing.T) {
	reader := &mockIceTimeReader{}
	svc := NewIceTimeService(reader, nil, nil, nil)

	_, err := svc.List(context.Background(), dto.IceTimeQuery{DateFilter: "nextYear"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
	assert.Equal(t, 0, reader.calls)
}
