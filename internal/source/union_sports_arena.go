package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/normalize"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

const (
	unionJobName  = "union-sports-arena-nj"
	unionRinkName = "Union Sports Arena"
)

// unionTypeMap covers the Bond Sports program vocabulary for this facility.
var unionTypeMap = normalize.TypeMap{
	"Learn To Skate":    models.TypeLearnToSkate,
	"Public Skate":      models.TypeOpenSkate,
	"Adult Open Hockey": models.TypeOpenHockey,
	"Freestyle":         models.TypeStickTime,
	"Youth Clinic":      models.TypeYouthClinic,
	"Adult Clinic":      models.TypeAdultClinic,
}

// UnionSportsArenaAdapter pulls the facility's programs-schedule JSON from
// the Bond Sports API.
type UnionSportsArenaAdapter struct {
	http       *resty.Client
	rinks      RinkStore
	writer     Reconciler
	baseURL    string
	windowDays int
	logger     *zap.Logger
}

// NewUnionSportsArenaAdapter constructs the adapter. baseURL defaults to
// the production Bond Sports endpoint.
func NewUnionSportsArenaAdapter(http *resty.Client, rinks RinkStore, writer Reconciler, baseURL string, windowDays int, logger *zap.Logger) *UnionSportsArenaAdapter {
	if baseURL == "" {
		baseURL = "https://api.bondsports.co"
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnionSportsArenaAdapter{
		http:       http,
		rinks:      rinks,
		writer:     writer,
		baseURL:    baseURL,
		windowDays: windowDays,
		logger:     logger,
	}
}

func (a *UnionSportsArenaAdapter) Name() string     { return unionJobName }
func (a *UnionSportsArenaAdapter) RinkName() string { return unionRinkName }

type bondSportsEvent struct {
	ProgramName    string `json:"programName"`
	EventStartDate string `json:"eventStartDate"`
	EventStartTime string `json:"eventStartTime"`
	EventEndTime   string `json:"eventEndTime"`
}

type bondSportsResponse struct {
	Data []bondSportsEvent `json:"data"`
}

// Ingest fetches the upcoming window and replaces the rink's active events.
// A non-success HTTP response aborts before any mutation.
func (a *UnionSportsArenaAdapter) Ingest(ctx context.Context) (*models.IngestionResult, error) {
	startedAt := time.Now().UTC()
	startDate := startedAt.Format(dateLayout)
	endDate := startedAt.AddDate(0, 0, a.windowDays).Format(dateLayout)

	url := fmt.Sprintf("%s/v4/facilities/116/programs-schedule", a.baseURL)
	a.logger.Info("fetching source data", zap.String("job", unionJobName), zap.String("url", url))

	var payload bondSportsResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"startDate": startDate,
			"endDate":   endDate,
			"caller":    "icetime",
		}).
		SetResult(&payload).
		Get(url)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "bond sports fetch failed")
	}
	if resp.IsError() {
		return nil, appErrors.Clone(appErrors.ErrSourceUnavailable, fmt.Sprintf("bond sports returned %d", resp.StatusCode()))
	}

	var events []models.NormalizedEvent
	var recordErrs []models.RecordError
	for _, raw := range payload.Data {
		ev, err := a.normalizeRecord(raw)
		if err != nil {
			a.logger.Warn("skipping malformed record",
				zap.String("job", unionJobName),
				zap.String("program", raw.ProgramName),
				zap.Error(err),
			)
			recordErrs = append(recordErrs, models.RecordError{
				Record: fmt.Sprintf("%s %s", raw.ProgramName, raw.EventStartDate),
				Reason: err.Error(),
			})
			continue
		}
		events = append(events, ev)
	}

	website := "https://unionsportsarena.com"
	rink, err := a.rinks.Upsert(ctx, &models.Rink{
		Name:     unionRinkName,
		Location: "2441 US-22, Union, NJ 07083",
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

	return newResult(unionJobName, unionRinkName, startedAt, len(payload.Data), summary, recordErrs), nil
}

func (a *UnionSportsArenaAdapter) normalizeRecord(raw bondSportsEvent) (models.NormalizedEvent, error) {
	if raw.EventStartDate == "" || raw.EventStartTime == "" || raw.EventEndTime == "" {
		return models.NormalizedEvent{}, fmt.Errorf("missing date or time fields")
	}
	// Dates arrive as RFC 3339 or bare YYYY-MM-DD depending on the program.
	day, err := time.Parse(dateLayout, raw.EventStartDate)
	if err != nil {
		ts, err2 := time.Parse(time.RFC3339, raw.EventStartDate)
		if err2 != nil {
			return models.NormalizedEvent{}, fmt.Errorf("unparseable event date %q", raw.EventStartDate)
		}
		day = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}

	return models.NormalizedEvent{
		Type:          normalize.Exact(raw.ProgramName, unionTypeMap),
		OriginalLabel: raw.ProgramName,
		Date:          day,
		StartTime:     raw.EventStartTime,
		EndTime:       raw.EventEndTime,
	}, nil
}
