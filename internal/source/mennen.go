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
	"github.com/icetimehq/icetime-api/internal/schedule"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

const (
	mennenRinkName  = "Mennen Sports Arena"
	mennenSourceURL = "https://www.morrisparks.net/index.php/parks/mennen-sports-arena/"
)

const mennenPromptTemplate = `There is a webpage that lists out the dates of certain Ice Rink events in the following way:
1. the event type (e.g., Public Skate)
2. The date range when they are held, (e.g., September 3rd - December 22nd)
3. A list of days with the time range on each day of the week for that event type.

Here is a snippet of that:
<BeginSnippet>
%s
</EndSnippet>

Produce a JSON array with one object per advertised date range for the "%s" events:
1. Use the startDate of today, which is %s
2. The endDate of the series of events
3. An attribute called "schedules" with the dayOfWeek followed by its startTime and endTime
4. An optional attribute called "exceptions" listing dates with no session

The schema of each object is as follows:
{
  "startDate": "2023-09-03",
  "endDate": "2023-12-22",
  "schedules": [
    {
      "dayOfWeek": "Monday",
      "startTime": "16:00",
      "endTime": "17:30"
    }
  ],
  "exceptions": [
    {
      "date": "2023-11-23"
    }
  ]
}
Please ONLY output valid JSON, no explanations, no comments, and no other text.`

// MennenAdapter handles the arena's free-text schedule page. The page
// advertises recurring weekly sessions per activity, so the adapter asks
// the extraction service for a schedule template and expands it into dated
// events. One adapter instance covers one activity section.
type MennenAdapter struct {
	jobName       string
	activityLabel string
	activityType  models.IceTimeType
	sectionSel    string

	http      *resty.Client
	extractor extract.Extractor
	rinks     RinkStore
	writer    Reconciler
	sourceURL string
	logger    *zap.Logger
}

// NewMennenAdapter constructs an adapter for one activity section of the
// Mennen schedule page, e.g. ("mennen-sports-arena-public-skate",
// "Public Skate", OPEN_SKATE, ".public-skate-schedule").
func NewMennenAdapter(jobName, activityLabel string, activityType models.IceTimeType, sectionSel string,
	http *resty.Client, extractor extract.Extractor, rinks RinkStore, writer Reconciler, sourceURL string, logger *zap.Logger) *MennenAdapter {
	if sourceURL == "" {
		sourceURL = mennenSourceURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MennenAdapter{
		jobName:       jobName,
		activityLabel: activityLabel,
		activityType:  activityType,
		sectionSel:    sectionSel,
		http:          http,
		extractor:     extractor,
		rinks:         rinks,
		writer:        writer,
		sourceURL:     sourceURL,
		logger:        logger,
	}
}

func (a *MennenAdapter) Name() string     { return a.jobName }
func (a *MennenAdapter) RinkName() string { return mennenRinkName }

// Ingest fetches the schedule page, extracts a weekly template for the
// adapter's activity, expands it, and replaces the rink's active events.
func (a *MennenAdapter) Ingest(ctx context.Context) (*models.IngestionResult, error) {
	startedAt := time.Now().UTC()

	snippet, err := a.fetchSnippet(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(mennenPromptTemplate, snippet, a.activityLabel, startedAt.Format(dateLayout))
	reply, err := a.extractor.Extract(ctx, "", prompt)
	if err != nil {
		return nil, err
	}

	templates, err := decodeScheduleTemplates(reply)
	if err != nil {
		return nil, err
	}

	occurrences, err := schedule.ExpandAll(templates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExtractionParse.Code, appErrors.ErrExtractionParse.Status, "extracted schedule failed expansion")
	}
	a.logger.Info("expanded schedule templates",
		zap.String("job", a.jobName),
		zap.Int("templates", len(templates)),
		zap.Int("occurrences", len(occurrences)),
	)

	events := make([]models.NormalizedEvent, 0, len(occurrences))
	for _, occ := range occurrences {
		events = append(events, models.NormalizedEvent{
			Type:          a.activityType,
			OriginalLabel: a.activityLabel,
			Date:          occ.Date,
			StartTime:     occ.StartTime,
			EndTime:       occ.EndTime,
		})
	}

	website := "https://www.morrisparks.net/index.php/parks/mennen-sports-arena/"
	rink, err := a.rinks.Upsert(ctx, &models.Rink{
		Name:     mennenRinkName,
		Location: "161 East Hanover Avenue, Morristown, NJ 07960",
		Website:  &website,
	})
	if err != nil {
		return nil, err
	}

	summary, writeErrs, err := a.writer.ReplaceActiveEvents(ctx, rink, events)
	if err != nil {
		return nil, err
	}

	return newResult(a.jobName, mennenRinkName, startedAt, len(events), summary, writeErrs), nil
}

// fetchSnippet pulls the schedule page and reduces the activity section to
// text. Feeding the model text instead of full markup keeps prompts small.
func (a *MennenAdapter) fetchSnippet(ctx context.Context) (string, error) {
	resp, err := a.http.R().SetContext(ctx).Get(a.sourceURL)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "schedule page fetch failed")
	}
	if resp.IsError() {
		return "", appErrors.Clone(appErrors.ErrSourceUnavailable, fmt.Sprintf("schedule page returned %d", resp.StatusCode()))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrSourceData.Code, appErrors.ErrSourceData.Status, "schedule page is not parseable HTML")
	}

	section := doc.Find(a.sectionSel)
	text := strings.TrimSpace(section.Text())
	if text == "" {
		// Fall back to the whole body when the section marker moved.
		text = strings.TrimSpace(doc.Find("body").Text())
	}
	if text == "" {
		return "", appErrors.Clone(appErrors.ErrSourceData, "schedule page contained no text")
	}
	return text, nil
}

// decodeScheduleTemplates accepts either a single template object or an
// array of them, tolerating markdown fences around the JSON.
func decodeScheduleTemplates(reply string) ([]schedule.Template, error) {
	cleaned := stripCodeFences(reply)

	var templates []schedule.Template
	if err := json.Unmarshal([]byte(cleaned), &templates); err == nil {
		return templates, nil
	}

	var single schedule.Template
	if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExtractionParse.Code, appErrors.ErrExtractionParse.Status, "extraction reply is not a schedule template")
	}
	return []schedule.Template{single}, nil
}

func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
