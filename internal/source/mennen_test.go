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

const mennenPageHTML = `<html><body>
<div class="schedule">
<h3>Public Skate</h3>
<p>September 3rd - December 22nd</p>
<p>Monday 4:00pm - 5:30pm</p>
</div>
</body></html>`

func newMennenTestAdapter(t *testing.T, extractor *fakeExtractor, writer *fakeWriter) (*MennenAdapter, *fakeRinkStore) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(mennenPageHTML))
	}))
	t.Cleanup(server.Close)

	rinks := &fakeRinkStore{}
	adapter := NewMennenAdapter(
		"mennen-sports-arena-public-skate", "Public Skate", models.TypeOpenSkate, ".schedule",
		resty.New(), extractor, rinks, writer, server.URL, nil,
	)
	return adapter, rinks
}

func TestMennenIngestExpandsTemplate(t *testing.T) {
	extractor := &fakeExtractor{reply: `[{
		"startDate": "2023-09-03",
		"endDate": "2023-09-10",
		"schedules": [{"dayOfWeek": "Monday", "startTime": "16:00", "endTime": "17:30"}]
	}]`}
	writer := &fakeWriter{}
	adapter, rinks := newMennenTestAdapter(t, extractor, writer)

	result, err := adapter.Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, extractor.calls)
	assert.Contains(t, extractor.prompts[0], "Public Skate")
	assert.Contains(t, extractor.prompts[0], "September 3rd - December 22nd")

	// One Monday falls inside that range.
	require.Len(t, writer.gotEvents, 1)
	assert.Equal(t, "2023-09-04", writer.gotEvents[0].Date.Format("2006-01-02"))
	assert.Equal(t, "16:00", writer.gotEvents[0].StartTime)
	assert.Equal(t, "17:30", writer.gotEvents[0].EndTime)
	assert.Equal(t, models.TypeOpenSkate, writer.gotEvents[0].Type)
	assert.Equal(t, "Public Skate", writer.gotEvents[0].OriginalLabel)

	assert.Equal(t, 1, rinks.upserts)
	assert.Equal(t, 1, result.Fetched)
}

func TestMennenIngestFencedSingleObjectReply(t *testing.T) {
	extractor := &fakeExtractor{reply: "```json\n" + `{
		"startDate": "2023-09-03",
		"endDate": "2023-09-10",
		"schedules": [{"dayOfWeek": "Monday", "startTime": "16:00", "endTime": "17:30"}]
	}` + "\n```"}
	writer := &fakeWriter{}
	adapter, _ := newMennenTestAdapter(t, extractor, writer)

	_, err := adapter.Ingest(context.Background())
	require.NoError(t, err)
	assert.Len(t, writer.gotEvents, 1)
}

func TestMennenIngestUnparseableReply(t *testing.T) {
	extractor := &fakeExtractor{reply: "Sorry, I could not find a schedule on that page."}
	writer := &fakeWriter{}
	adapter, rinks := newMennenTestAdapter(t, extractor, writer)

	_, err := adapter.Ingest(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrExtractionParse.Code))
	assert.Equal(t, 0, writer.calls)
	assert.Equal(t, 0, rinks.upserts)
}

func TestMennenIngestExtractorFailure(t *testing.T) {
	extractor := &fakeExtractor{err: appErrors.ErrExtractionService}
	writer := &fakeWriter{}
	adapter, _ := newMennenTestAdapter(t, extractor, writer)

	_, err := adapter.Ingest(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrExtractionService.Code))
	assert.Equal(t, 0, writer.calls)
}

func TestMennenIngestSourceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	extractor := &fakeExtractor{}
	writer := &fakeWriter{}
	adapter := NewMennenAdapter(
		"mennen-sports-arena-public-skate", "Public Skate", models.TypeOpenSkate, ".schedule",
		resty.New(), extractor, &fakeRinkStore{}, writer, server.URL, nil,
	)

	_, err := adapter.Ingest(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSourceUnavailable.Code))
	assert.Equal(t, 0, extractor.calls)
	assert.Equal(t, 0, writer.calls)
}
