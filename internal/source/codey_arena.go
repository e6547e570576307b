package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/normalize"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

const (
	codeyJobName  = "west-orange-codey-arena"
	codeyRinkName = "Codey Arena"
)

var codeyTypeMap = normalize.TypeMap{
	"Codey Arena Public Session Skating":    models.TypeOpenSkate,
	"Codey Arena - Learn to Skate Class":    models.TypeLearnToSkate,
	"Codey Arena Adult 35+ Skating Session": models.TypeAdultSkate,
}

// CodeyArenaAdapter pulls the Essex County parks calendar feed for the
// Codey Arena location. The rink must already exist (seeded); this source
// carries no facility metadata to create it from.
type CodeyArenaAdapter struct {
	http       *resty.Client
	rinks      RinkStore
	writer     Reconciler
	baseURL    string
	windowDays int
	logger     *zap.Logger
}

// NewCodeyArenaAdapter constructs the adapter. baseURL defaults to the
// Essex County parks site.
func NewCodeyArenaAdapter(http *resty.Client, rinks RinkStore, writer Reconciler, baseURL string, windowDays int, logger *zap.Logger) *CodeyArenaAdapter {
	if baseURL == "" {
		baseURL = "https://essexcountyparks.org"
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeyArenaAdapter{
		http:       http,
		rinks:      rinks,
		writer:     writer,
		baseURL:    baseURL,
		windowDays: windowDays,
		logger:     logger,
	}
}

func (a *CodeyArenaAdapter) Name() string     { return codeyJobName }
func (a *CodeyArenaAdapter) RinkName() string { return codeyRinkName }

type parksCalendarEvent struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Ingest fetches the calendar feed and replaces the rink's active events.
func (a *CodeyArenaAdapter) Ingest(ctx context.Context) (*models.IngestionResult, error) {
	startedAt := time.Now().UTC()
	url := fmt.Sprintf("%s/calendar.json/location/65", a.baseURL)
	a.logger.Info("fetching source data", zap.String("job", codeyJobName), zap.String("url", url))

	var payload []parksCalendarEvent
	resp, err := a.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"start": startedAt.Format(dateLayout),
			"end":   startedAt.AddDate(0, 0, a.windowDays).Format(dateLayout),
		}).
		SetResult(&payload).
		Get(url)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "parks calendar fetch failed")
	}
	if resp.IsError() {
		return nil, appErrors.Clone(appErrors.ErrSourceUnavailable, fmt.Sprintf("parks calendar returned %d", resp.StatusCode()))
	}

	var events []models.NormalizedEvent
	var recordErrs []models.RecordError
	for _, raw := range payload {
		ev, err := a.normalizeRecord(raw)
		if err != nil {
			a.logger.Warn("skipping malformed record",
				zap.String("job", codeyJobName),
				zap.String("title", raw.Title),
				zap.Error(err),
			)
			recordErrs = append(recordErrs, models.RecordError{
				Record: fmt.Sprintf("%s %s", raw.Title, raw.Start),
				Reason: err.Error(),
			})
			continue
		}
		events = append(events, ev)
	}

	rink, err := a.rinks.FindByName(ctx, codeyRinkName)
	if err != nil {
		return nil, err
	}
	if rink == nil {
		return nil, appErrors.Clone(appErrors.ErrRinkNotFound, fmt.Sprintf("rink %q not seeded", codeyRinkName))
	}

	summary, writeErrs, err := a.writer.ReplaceActiveEvents(ctx, rink, events)
	if err != nil {
		return nil, err
	}
	recordErrs = append(recordErrs, writeErrs...)

	return newResult(codeyJobName, codeyRinkName, startedAt, len(payload), summary, recordErrs), nil
}

// normalizeRecord splits "YYYY-MM-DD HH:MM:SS" start/end stamps into a
// calendar date plus wall-clock times.
func (a *CodeyArenaAdapter) normalizeRecord(raw parksCalendarEvent) (models.NormalizedEvent, error) {
	startParts := strings.SplitN(raw.Start, " ", 2)
	endParts := strings.SplitN(raw.End, " ", 2)
	if len(startParts) != 2 || len(endParts) != 2 {
		return models.NormalizedEvent{}, fmt.Errorf("unexpected timestamp layout %q / %q", raw.Start, raw.End)
	}
	day, err := time.Parse(dateLayout, startParts[0])
	if err != nil {
		return models.NormalizedEvent{}, fmt.Errorf("unparseable event date %q", startParts[0])
	}

	return models.NormalizedEvent{
		Type:          normalize.Exact(raw.Title, codeyTypeMap),
		OriginalLabel: raw.Title,
		Date:          day,
		StartTime:     startParts[1],
		EndTime:       endParts[1],
	}, nil
}
