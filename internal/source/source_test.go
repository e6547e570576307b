package source

import (
	"context"

	"github.com/icetimehq/icetime-api/internal/models"
)

type fakeRinkStore struct {
	rink      *models.Rink
	findCalls int
	upserts   int
	err       error
}

func (f *fakeRinkStore) FindByName(ctx context.Context, name string) (*models.Rink, error) {
	f.findCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rink, nil
}

func (f *fakeRinkStore) Upsert(ctx context.Context, rink *models.Rink) (*models.Rink, error) {
	f.upserts++
	if f.err != nil {
		return nil, f.err
	}
	if f.rink != nil {
		return f.rink, nil
	}
	stored := *rink
	stored.ID = "rink-1"
	f.rink = &stored
	return &stored, nil
}

type fakeWriter struct {
	calls      int
	gotRink    *models.Rink
	gotEvents  []models.NormalizedEvent
	summary    models.ReplaceSummary
	recordErrs []models.RecordError
	err        error
}

func (f *fakeWriter) ReplaceActiveEvents(ctx context.Context, rink *models.Rink, events []models.NormalizedEvent) (models.ReplaceSummary, []models.RecordError, error) {
	f.calls++
	f.gotRink = rink
	f.gotEvents = events
	if f.err != nil {
		return models.ReplaceSummary{}, nil, f.err
	}
	if f.summary == (models.ReplaceSummary{}) {
		f.summary = models.ReplaceSummary{SoftDeleted: 0, Created: len(events)}
	}
	return f.summary, f.recordErrs, nil
}

type fakeExtractor struct {
	reply   string
	err     error
	calls   int
	prompts []string
	systems []string
}

func (f *fakeExtractor) Extract(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
