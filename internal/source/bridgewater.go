package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/browser"
	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/normalize"
	"github.com/icetimehq/icetime-api/pkg/config"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

const (
	bridgewaterJobName  = "bridgewater-ice-arena"
	bridgewaterRinkName = "Bridgewater Ice Arena"

	bridgewaterLandingURL = "https://www.bridgewatericearena.com/events-page"

	viewAllSelector   = `a.goToLink.icon[title="View All"]`
	monthListSelector = `a.siteMapLink.icon[href="/event/show_month_list/6359108"]`
	eventSelector     = `.vevent`
)

// Scraped titles are decorated ("Friday Public Skate - Rink 2"), so matching
// is by containment, not exact lookup.
var bridgewaterTypeMap = normalize.TypeMap{
	"public skate":   models.TypeOpenSkate,
	"stick time":     models.TypeStickTime,
	"learn to skate": models.TypeLearnToSkate,
	"youth clinic":   models.TypeYouthClinic,
	"adult clinic":   models.TypeAdultClinic,
	"open hockey":    models.TypeOpenHockey,
}

// bridgewaterExtractJS collects the month-list event microformat nodes into
// plain records. Times come from the dtstart/dtend title attributes, which
// carry full timestamps.
const bridgewaterExtractJS = `Array.from(document.querySelectorAll('.vevent')).map(el => {
	const pick = (sel, attr) => {
		const n = el.querySelector(sel);
		if (!n) return '';
		return attr ? (n.getAttribute(attr) || '') : (n.textContent || '').trim();
	};
	return {
		title: pick('.summary a'),
		month: pick('.month'),
		day: pick('.date'),
		start: pick('.dtstart[title]', 'title'),
		end: pick('.dtend[title]', 'title')
	};
})`

type bridgewaterRecord struct {
	Title string `json:"title"`
	Month string `json:"month"`
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// newBrowserSession is swapped out in tests.
type sessionFactory func(ctx context.Context, cfg config.BrowserConfig) (*browser.Session, error)

// BridgewaterAdapter drives a headless browser through the arena's events
// site: landing page, "View All", month-list view, then DOM extraction.
type BridgewaterAdapter struct {
	newSession sessionFactory
	browserCfg config.BrowserConfig
	rinks      RinkStore
	writer     Reconciler
	landingURL string
	logger     *zap.Logger
}

// NewBridgewaterAdapter constructs the adapter.
func NewBridgewaterAdapter(browserCfg config.BrowserConfig, rinks RinkStore, writer Reconciler, landingURL string, logger *zap.Logger) *BridgewaterAdapter {
	if landingURL == "" {
		landingURL = bridgewaterLandingURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BridgewaterAdapter{
		newSession: browser.NewSession,
		browserCfg: browserCfg,
		rinks:      rinks,
		writer:     writer,
		landingURL: landingURL,
		logger:     logger,
	}
}

func (a *BridgewaterAdapter) Name() string     { return bridgewaterJobName }
func (a *BridgewaterAdapter) RinkName() string { return bridgewaterRinkName }

// Ingest scrapes the month-list calendar and replaces the rink's active
// events. The browser session is released on every exit path.
func (a *BridgewaterAdapter) Ingest(ctx context.Context) (*models.IngestionResult, error) {
	startedAt := time.Now().UTC()

	records, err := a.scrape(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("scraped events", zap.String("job", bridgewaterJobName), zap.Int("count", len(records)))

	events, recordErrs := normalizeBridgewaterRecords(records, startedAt.Year())

	rink, err := a.rinks.FindByName(ctx, bridgewaterRinkName)
	if err != nil {
		return nil, err
	}
	if rink == nil {
		return nil, appErrors.Clone(appErrors.ErrRinkNotFound, fmt.Sprintf("rink %q not seeded", bridgewaterRinkName))
	}

	summary, writeErrs, err := a.writer.ReplaceActiveEvents(ctx, rink, events)
	if err != nil {
		return nil, err
	}
	recordErrs = append(recordErrs, writeErrs...)

	return newResult(bridgewaterJobName, bridgewaterRinkName, startedAt, len(records), summary, recordErrs), nil
}

// scrape owns the browser session for exactly one navigation chain.
func (a *BridgewaterAdapter) scrape(ctx context.Context) ([]bridgewaterRecord, error) {
	session, err := a.newSession(ctx, a.browserCfg)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := session.Navigate(a.landingURL); err != nil {
		return nil, err
	}
	if err := session.Click(viewAllSelector); err != nil {
		return nil, err
	}
	if err := session.Click(monthListSelector); err != nil {
		return nil, err
	}
	if err := session.WaitVisibleLong(eventSelector); err != nil {
		return nil, err
	}

	var records []bridgewaterRecord
	if err := session.EvaluateJSON(bridgewaterExtractJS, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// normalizeBridgewaterRecords converts scraped microformat records into
// normalized events. The page omits the year, so the current year is
// assumed; malformed records are skipped and reported.
func normalizeBridgewaterRecords(records []bridgewaterRecord, year int) ([]models.NormalizedEvent, []models.RecordError) {
	var events []models.NormalizedEvent
	var recordErrs []models.RecordError

	for _, rec := range records {
		day, err := parseBridgewaterDate(rec.Month, rec.Day, year)
		if err != nil {
			recordErrs = append(recordErrs, models.RecordError{
				Record: fmt.Sprintf("%s %s %s", rec.Title, rec.Month, rec.Day),
				Reason: err.Error(),
			})
			continue
		}
		start, err1 := parseClockTime(rec.Start)
		end, err2 := parseClockTime(rec.End)
		if err1 != nil || err2 != nil {
			recordErrs = append(recordErrs, models.RecordError{
				Record: fmt.Sprintf("%s %s", rec.Title, day.Format(dateLayout)),
				Reason: "unparseable start/end timestamp",
			})
			continue
		}

		events = append(events, models.NormalizedEvent{
			Type:          normalize.Contains(rec.Title, bridgewaterTypeMap),
			OriginalLabel: rec.Title,
			Date:          day,
			StartTime:     start,
			EndTime:       end,
		})
	}
	return events, recordErrs
}

func parseBridgewaterDate(month, day string, year int) (time.Time, error) {
	if month == "" || day == "" {
		return time.Time{}, fmt.Errorf("missing month/day")
	}
	// The month cell renders a short name ("Sep"); the date cell a number.
	t, err := time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %d", month, day, year))
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %s %s", month, day)
	}
	return t, nil
}

// parseClockTime reduces a microformat timestamp to HH:MM:SS wall time.
func parseClockTime(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty timestamp")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("15:04:05"), nil
		}
	}
	return "", fmt.Errorf("unparseable timestamp %q", raw)
}
