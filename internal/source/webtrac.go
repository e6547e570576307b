package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/extract"
	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/normalize"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

const (
	webtracJobName  = "bloomington-webtrac"
	webtracRinkName = "Bloomington Ice Garden"

	webtracCalendarPath = "/wbwsc/bloomingtonmn.wsc/iccalendar.html"

	// Calendar markup per bucket, not per request. Larger buckets blow the
	// extraction token budget; smaller ones multiply rate-limited calls.
	webtracBucketDays = 7
)

var webtracTypeMap = normalize.TypeMap{
	"open skating":    models.TypeOpenSkate,
	"open hockey":     models.TypeOpenHockey,
	"open stick":      models.TypeStickTime,
	"stick & puck":    models.TypeStickTime,
	"learn to skate":  models.TypeLearnToSkate,
	"adult open":      models.TypeAdultSkate,
	"figure skating":  models.TypeStickTime,
	"skating lessons": models.TypeLearnToSkate,
}

const webtracSystemPrompt = `You are an expert HTML parser. You read fragments of a recreation department calendar and emit compact JSON describing the scheduled activities. You only ever output valid JSON with no surrounding text.`

const webtracPromptTemplate = `The following HTML fragments each describe one calendar day at an ice arena. Each day contains zero or more activity entries with a name and a time range.

<BeginFragments>
%s
</EndFragments>

Output a single JSON object with this exact shape:
{
  "activities": {"1": "Open Skating", "2": "Open Hockey"},
  "events": [
    ["2023-09-04", ["1", "06:00", "07:30"], ["2", "12:00", "13:30"]],
    ["2023-09-05", ["1", "06:00", "07:30"]]
  ]
}
"activities" assigns a short numeric id to each distinct activity name. Each entry of "events" is an array whose first element is the date in YYYY-MM-DD format and whose remaining elements are [activityId, startTime, endTime] triples in 24-hour HH:MM format. Include a date even when it has no activities, as a one-element array. Output ONLY the JSON object.`

// WebtracAdapter reads the city's WebTrac ice calendar. WebTrac renders
// its schedule as templated day cells, so the adapter slices the page into
// day fragments and sends them to the extraction service in buckets. The
// shared extraction client paces the calls.
type WebtracAdapter struct {
	http       *resty.Client
	extractor  extract.Extractor
	rinks      RinkStore
	writer     Reconciler
	baseURL    string
	bucketDays int
	logger     *zap.Logger
}

// NewWebtracAdapter constructs the adapter. baseURL defaults to the city
// of Bloomington WebTrac host.
func NewWebtracAdapter(http *resty.Client, extractor extract.Extractor, rinks RinkStore, writer Reconciler, baseURL string, logger *zap.Logger) *WebtracAdapter {
	if baseURL == "" {
		baseURL = "https://webtrac.bloomingtonmn.gov"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebtracAdapter{
		http:       http,
		extractor:  extractor,
		rinks:      rinks,
		writer:     writer,
		baseURL:    baseURL,
		bucketDays: webtracBucketDays,
		logger:     logger,
	}
}

func (a *WebtracAdapter) Name() string     { return webtracJobName }
func (a *WebtracAdapter) RinkName() string { return webtracRinkName }

// webtracExtraction is the compact reply schema. Events are heterogeneous
// arrays, so they are decoded in two passes via RawMessage.
type webtracExtraction struct {
	Activities map[string]string `json:"activities"`
	Events     []json.RawMessage `json:"events"`
}

// Ingest fetches the calendar page, extracts each bucket of day fragments,
// and replaces the rink's active events. A bucket whose reply does not
// parse is reported and skipped; an extraction service failure aborts the
// run with the stored schedule untouched.
func (a *WebtracAdapter) Ingest(ctx context.Context) (*models.IngestionResult, error) {
	startedAt := time.Now().UTC()

	fragments, err := a.fetchDayFragments(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("sliced calendar page",
		zap.String("job", webtracJobName),
		zap.Int("days", len(fragments)),
	)

	var events []models.NormalizedEvent
	var recordErrs []models.RecordError
	for i := 0; i < len(fragments); i += a.bucketDays {
		end := i + a.bucketDays
		if end > len(fragments) {
			end = len(fragments)
		}
		bucket := fragments[i:end]

		bucketEvents, err := a.extractBucket(ctx, bucket)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			// A service-level failure means every remaining bucket would fail
			// too. Abort before touching the stored schedule; only a bad
			// reply for this bucket is safe to skip.
			if !appErrors.Is(err, appErrors.ErrExtractionParse.Code) {
				return nil, err
			}
			a.logger.Warn("skipping failed calendar bucket",
				zap.String("job", webtracJobName),
				zap.Int("bucketStart", i),
				zap.Error(err),
			)
			recordErrs = append(recordErrs, models.RecordError{
				Record: fmt.Sprintf("bucket starting at day %d", i),
				Reason: err.Error(),
			})
			continue
		}
		events = append(events, bucketEvents...)
	}

	website := "https://www.bloomingtonmn.gov/bloomington-ice-garden"
	rink, err := a.rinks.Upsert(ctx, &models.Rink{
		Name:     webtracRinkName,
		Location: "3600 West 98th Street, Bloomington, MN 55431",
		Website:  &website,
	})
	if err != nil {
		return nil, err
	}

	summary, writeErrs, err := a.writer.ReplaceActiveEvents(ctx, rink, events)
	if err != nil {
		return nil, err
	}
	recordErrs = append(recordErrs, writeErrs...)

	return newResult(webtracJobName, webtracRinkName, startedAt, len(events), summary, recordErrs), nil
}

// fetchDayFragments downloads the calendar and returns one HTML string per
// day cell. WebTrac refuses requests without browser-looking headers.
func (a *WebtracAdapter) fetchDayFragments(ctx context.Context) ([]string, error) {
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml",
			"Accept-Language": "en-US,en;q=0.9",
		}).
		Get(a.baseURL + webtracCalendarPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "webtrac calendar fetch failed")
	}
	if resp.IsError() {
		return nil, appErrors.Clone(appErrors.ErrSourceUnavailable, fmt.Sprintf("webtrac calendar returned %d", resp.StatusCode()))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSourceData.Code, appErrors.ErrSourceData.Status, "webtrac calendar is not parseable HTML")
	}

	var fragments []string
	doc.Find("td.websearch_calendarblock").Each(func(_ int, sel *goquery.Selection) {
		html, err := goquery.OuterHtml(sel)
		if err != nil {
			return
		}
		fragments = append(fragments, html)
	})
	if len(fragments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrSourceData, "webtrac calendar contained no day cells")
	}
	return fragments, nil
}

// extractBucket sends one bucket of day fragments through the extraction
// service and decodes the compact reply.
func (a *WebtracAdapter) extractBucket(ctx context.Context, fragments []string) ([]models.NormalizedEvent, error) {
	prompt := fmt.Sprintf(webtracPromptTemplate, strings.Join(fragments, "\n\n"))
	reply, err := a.extractor.Extract(ctx, webtracSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return parseWebtracReply(reply)
}

// parseWebtracReply decodes the activities/events reply into normalized
// events. Any structural surprise fails the whole bucket.
func parseWebtracReply(reply string) ([]models.NormalizedEvent, error) {
	var extraction webtracExtraction
	if err := json.Unmarshal([]byte(stripCodeFences(reply)), &extraction); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExtractionParse.Code, appErrors.ErrExtractionParse.Status, "extraction reply is not the expected calendar shape")
	}

	var events []models.NormalizedEvent
	for _, rawDay := range extraction.Events {
		var parts []json.RawMessage
		if err := json.Unmarshal(rawDay, &parts); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrExtractionParse.Code, appErrors.ErrExtractionParse.Status, "day entry is not an array")
		}
		if len(parts) == 0 {
			return nil, appErrors.Clone(appErrors.ErrExtractionParse, "day entry is empty")
		}

		var dateStr string
		if err := json.Unmarshal(parts[0], &dateStr); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrExtractionParse.Code, appErrors.ErrExtractionParse.Status, "day entry does not start with a date")
		}
		day, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrExtractionParse, fmt.Sprintf("unparseable day %q", dateStr))
		}

		for _, rawTriple := range parts[1:] {
			var triple [3]string
			if err := json.Unmarshal(rawTriple, &triple); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrExtractionParse.Code, appErrors.ErrExtractionParse.Status, "activity entry is not an [id, start, end] triple")
			}
			label, ok := extraction.Activities[triple[0]]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrExtractionParse, fmt.Sprintf("unknown activity id %q", triple[0]))
			}

			events = append(events, models.NormalizedEvent{
				Type:          normalize.Contains(label, webtracTypeMap),
				OriginalLabel: label,
				Date:          day,
				StartTime:     triple[1],
				EndTime:       triple[2],
			})
		}
	}
	return events, nil
}
