package analysis

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wellpulse/wellpulse-go/internal/aggregate"
	"github.com/wellpulse/wellpulse-go/internal/config"
	apperrors "github.com/wellpulse/wellpulse-go/internal/errors"
	"github.com/wellpulse/wellpulse-go/internal/models"
	"github.com/wellpulse/wellpulse-go/internal/resolve"
	"github.com/wellpulse/wellpulse-go/internal/risk"
	"github.com/wellpulse/wellpulse-go/internal/roster"
	"github.com/wellpulse/wellpulse-go/internal/score"
	"github.com/wellpulse/wellpulse-go/internal/survey"
)

// loadConcurrency bounds the number of batch files read in parallel.
const loadConcurrency = 4

// Runner orchestrates a full analysis: load weekly batches, resolve
// participant identities, compute longitudinal scores, decorate from the
// roster, and aggregate groups.
type Runner struct {
	cfg            *config.Config
	questionnaires map[string]*survey.Questionnaire
	calculator     *score.Calculator
	classifier     *risk.Classifier
	logger         *slog.Logger
}

// Result is the outcome of one analysis run.
type Result struct {
	Document *models.AnalysisDocument

	// AmbiguousFallbacks counts late-week respondents that could not be
	// matched to an existing participant despite name collisions. A nonzero
	// value deserves manual review of the participant list.
	AmbiguousFallbacks int
}

// NewRunner loads the questionnaire set and cutoff table and builds a runner.
// Instrument definitions load leniently here: a missing file drops that
// category from the run instead of aborting it, since merging only needs the
// definitions for sub-type mapping.
func NewRunner(cfg *config.Config) (*Runner, error) {
	questionnaires, err := survey.LoadAvailableQuestionnaireSet(cfg.Directories.Questionnaires)
	if err != nil {
		return nil, err
	}

	table, err := risk.LoadTable(cfg.Risk.CutoffsPath)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:            cfg,
		questionnaires: questionnaires,
		calculator:     score.NewCalculator(),
		classifier:     risk.NewClassifier(table, cfg.Risk.MaleMarker),
		logger:         slog.Default().With("component", "analysis_runner"),
	}, nil
}

// Run executes the pipeline over every weekly batch in the configured
// directory. Batch files load concurrently; merging into the participant
// store is sequential in week order because identity matching depends on
// what earlier weeks established.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	batches, err := survey.DiscoverBatches(r.cfg.Directories.Batches)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, apperrors.NoUsableInput("no weekly batch files found in " + r.cfg.Directories.Batches)
	}

	loaded, err := r.loadBatches(ctx, batches)
	if err != nil {
		return nil, err
	}

	ros := roster.Load(r.cfg.Survey.RosterPath)

	resolver := resolve.NewResolver(resolve.NewStore(), ros)
	for i, batch := range batches {
		r.mergeWeek(resolver, batch, loaded[i])
	}

	records := resolver.Store().Records()
	r.decorate(records, ros)

	aggregator := aggregate.NewAggregator(r.classifier)
	groups := aggregator.Aggregate(records, aggregate.Groups(r.cfg.Teams))

	r.logger.Info("analysis complete",
		"weeks", len(batches),
		"participants", len(records),
		"groups", len(groups),
		"ambiguous_fallbacks", resolver.AmbiguousFallbacks(),
	)

	return &Result{
		Document: &models.AnalysisDocument{
			Participants: records,
			Groups:       groups,
		},
		AmbiguousFallbacks: resolver.AmbiguousFallbacks(),
	}, nil
}

// loadBatches reads every batch file, a few at a time. Results land in a
// slice parallel to batches so week order survives the concurrency.
func (r *Runner) loadBatches(ctx context.Context, batches []survey.Batch) ([][]models.RawResponse, error) {
	loaded := make([][]models.RawResponse, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			responses, err := survey.ReadBatch(batch.Path)
			if err != nil {
				return err
			}
			loaded[i] = responses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// mergeWeek resolves each respondent of one week and attaches that week's
// computed scores to their record.
func (r *Runner) mergeWeek(resolver *resolve.Resolver, batch survey.Batch, responses []models.RawResponse) {
	late := batch.Index >= r.cfg.Survey.LateWeekThreshold

	for _, resp := range responses {
		key := resolver.Resolve(resolve.Candidate{
			Name:  resp.Name,
			Team:  resp.Team,
			Role:  resp.Role,
			Phone: resp.Phone,
			Email: resp.Email,
		}, late)

		rec, ok := resolver.Store().Get(key)
		if !ok {
			// Resolve always returns a stored key.
			r.logger.Error("resolved key missing from store", "key", key)
			continue
		}

		ws := rec.WeeklyScores[batch.Label]
		if ws == nil {
			ws = models.NewWeeklyScore()
			rec.WeeklyScores[batch.Label] = ws
		}

		for category, rawScores := range resp.Scores {
			q := r.questionnaires[category]
			if q == nil {
				r.logger.Warn("batch references unknown instrument",
					"week", batch.Label,
					"category", category,
				)
				continue
			}
			cs := r.calculator.ComputeWeeklyScore(rawScores, q.ItemTypes(), category)
			ws.CategoryAverages[category] = cs.Average
			if len(cs.TypeAverages) > 0 {
				ws.TypeAverages[category] = cs.TypeAverages
			}
		}
	}

	r.logger.Debug("week merged",
		"week", batch.Label,
		"responses", len(responses),
		"participants", resolver.Store().Len(),
	)
}

// decorate attaches roster attributes (external ID, gender) to resolved
// records. Gender must be in place before aggregation so risk tallies use
// the right cutoff tables.
func (r *Runner) decorate(records []*models.ParticipantRecord, ros *roster.Roster) {
	matched := 0
	for _, rec := range records {
		entry, ok := ros.Find(rec.Name, rec.Team)
		if !ok {
			continue
		}
		rec.ExternalID = entry.ExternalID
		rec.Gender = entry.Gender
		matched++
	}
	if len(records) > 0 {
		r.logger.Info("roster decoration",
			"matched", matched,
			"participants", len(records),
		)
	}
}
