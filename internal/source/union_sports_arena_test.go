package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icetimehq/icetime-api/internal/models"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

func TestUnionSportsArenaIngest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/facilities/116/programs-schedule", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("startDate"))
		assert.NotEmpty(t, r.URL.Query().Get("endDate"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"programName":"Freestyle","eventStartDate":"2023-09-04","eventStartTime":"16:00:00","eventEndTime":"17:30:00"},
			{"programName":"Zamboni Break","eventStartDate":"2023-09-04","eventStartTime":"17:30:00","eventEndTime":"18:00:00"},
			{"programName":"Public Skate","eventStartDate":"","eventStartTime":"12:00:00","eventEndTime":"13:30:00"}
		]}`))
	}))
	defer server.Close()

	rinks := &fakeRinkStore{}
	writer := &fakeWriter{}
	adapter := NewUnionSportsArenaAdapter(resty.New(), rinks, writer, server.URL, 7, nil)

	result, err := adapter.Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, writer.gotEvents, 2)

	assert.Equal(t, models.TypeStickTime, writer.gotEvents[0].Type)
	assert.Equal(t, "Freestyle", writer.gotEvents[0].OriginalLabel)
	assert.Equal(t, "2023-09-04", writer.gotEvents[0].Date.Format("2006-01-02"))
	assert.Equal(t, "16:00:00", writer.gotEvents[0].StartTime)
	assert.Equal(t, "17:30:00", writer.gotEvents[0].EndTime)

	assert.Equal(t, models.TypeOther, writer.gotEvents[1].Type)
	assert.Equal(t, "Zamboni Break", writer.gotEvents[1].OriginalLabel)

	assert.Equal(t, 1, rinks.upserts)
	assert.Equal(t, "Union Sports Arena", writer.gotRink.Name)
}

func TestUnionSportsArenaIngestSourceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	rinks := &fakeRinkStore{}
	writer := &fakeWriter{}
	adapter := NewUnionSportsArenaAdapter(resty.New(), rinks, writer, server.URL, 7, nil)

	result, err := adapter.Ingest(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, appErrors.Is(err, appErrors.ErrSourceUnavailable.Code))

	// A dead source must leave the stored schedule untouched.
	assert.Equal(t, 0, rinks.upserts)
	assert.Equal(t, 0, writer.calls)
}

func TestUnionSportsArenaIngestWriterFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"programName":"Public Skate","eventStartDate":"2023-09-04","eventStartTime":"12:00:00","eventEndTime":"13:30:00"}]}`))
	}))
	defer server.Close()

	rinks := &fakeRinkStore{}
	writer := &fakeWriter{err: appErrors.ErrInternal}
	adapter := NewUnionSportsArenaAdapter(resty.New(), rinks, writer, server.URL, 7, nil)

	_, err := adapter.Ingest(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal.Code))
}
