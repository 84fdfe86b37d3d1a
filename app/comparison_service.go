package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"tradestats/domain/comparison"
	"tradestats/domain/core"
	"tradestats/internal"
	"tradestats/internal/analysis/groups"
	"tradestats/internal/config"
	"tradestats/ports"

	"golang.org/x/sync/errgroup"
)

// ComparisonService runs two-group comparisons over inline samples or samples
// loaded from a SampleSource.
type ComparisonService struct {
	source   ports.SampleSource // optional
	analysis config.AnalysisConfig
	plot     config.PlotConfig
	logger   *internal.Logger
}

// ComparisonRequest defines the inputs of one comparison. Either both inline
// samples or Query must be set.
type ComparisonRequest struct {
	GroupA []float64               `json:"group_a,omitempty"`
	GroupB []float64               `json:"group_b,omitempty"`
	Query  *comparison.SampleQuery `json:"query,omitempty"`
	Alpha  float64                 `json:"alpha,omitempty"` // service default when zero
	Test   comparison.TestKind     `json:"test,omitempty"`  // service default when empty
	LabelA string                  `json:"label_a,omitempty"`
	LabelB string                  `json:"label_b,omitempty"`
}

// ComparisonOutcome contains everything a comparison produced.
type ComparisonOutcome struct {
	ID            core.AnalysisID                 `json:"id"`
	Fingerprint   core.SampleHash                 `json:"fingerprint"`
	Test          comparison.TestKind             `json:"test"`
	Alpha         float64                         `json:"alpha"`
	Query         *comparison.SampleQuery         `json:"query,omitempty"`
	Skipped       int                             `json:"skipped"`
	Descriptives  comparison.Descriptives         `json:"descriptives"`
	Parametric    *comparison.ParametricReport    `json:"parametric,omitempty"`
	NonParametric *comparison.NonParametricReport `json:"nonparametric,omitempty"`
	Magnitude     comparison.Magnitude            `json:"magnitude"`
	Significant   bool                            `json:"significant"`
	Summary       string                          `json:"summary"`
	RuntimeMs     int64                           `json:"runtime_ms"`

	analysis *groups.Analysis
}

// NewComparisonService creates a comparison service. source may be nil when
// every request carries inline samples.
func NewComparisonService(source ports.SampleSource, analysisCfg config.AnalysisConfig, plotCfg config.PlotConfig, logger *internal.Logger) *ComparisonService {
	if analysisCfg.Alpha == 0 {
		analysisCfg.Alpha = groups.DefaultAlpha
	}
	if analysisCfg.DefaultTest == "" {
		analysisCfg.DefaultTest = comparison.TestParametric
	}
	if analysisCfg.BatchConcurrency < 1 {
		analysisCfg.BatchConcurrency = 1
	}
	return &ComparisonService{
		source:   source,
		analysis: analysisCfg,
		plot:     plotCfg,
		logger:   logger,
	}
}

// Compare loads the samples, runs the requested test paths and collects the
// descriptives, reports and verdict.
func (s *ComparisonService) Compare(ctx context.Context, req ComparisonRequest) (*ComparisonOutcome, error) {
	startTime := time.Now()

	kind, err := s.resolveKind(req.Test)
	if err != nil {
		return nil, err
	}
	alpha := req.Alpha
	if alpha == 0 {
		alpha = s.analysis.Alpha
	}

	groupA, groupB, pair, err := s.loadSamples(ctx, req)
	if err != nil {
		return nil, err
	}

	a, err := groups.Load(groupA, groupB, groups.WithAlpha(alpha))
	if err != nil {
		return nil, err
	}

	outcome := &ComparisonOutcome{
		ID:          core.NewAnalysisID(),
		Fingerprint: core.ComputeSampleHash(groupA, groupB, alpha),
		Test:        kind,
		Alpha:       alpha,
		analysis:    a,
	}
	if pair != nil {
		outcome.Query = &pair.Query
		outcome.Skipped = pair.Skipped
	}

	if kind.IncludesParametric() {
		if _, err := a.RunParametricTest(); err != nil {
			return nil, err
		}
		report, err := a.Results()
		if err != nil {
			return nil, err
		}
		outcome.Parametric = &report
	}
	if kind.IncludesNonParametric() {
		if _, err := a.RunNonParametricTest(); err != nil {
			return nil, err
		}
		report, err := a.ResultsNonParametric()
		if err != nil {
			return nil, err
		}
		outcome.NonParametric = &report
	}

	result, err := a.Result()
	if err != nil {
		return nil, err
	}
	outcome.Magnitude = result.Magnitude()
	if outcome.Significant, err = a.Significant(); err != nil {
		return nil, err
	}
	if outcome.Summary, err = a.Summarise(); err != nil {
		return nil, err
	}

	labelA, labelB := labels(req)
	outcome.Descriptives = a.Describe()
	outcome.Descriptives.GroupA.Label = labelA
	outcome.Descriptives.GroupB.Label = labelB

	outcome.RuntimeMs = time.Since(startTime).Milliseconds()
	s.logger.Debug("[ComparisonService] %s: %s n=%d/%d p=%.4g significant=%t",
		outcome.ID, kind, len(groupA), len(groupB), result.PValue(), outcome.Significant)

	return outcome, nil
}

// CompareAll runs independent comparisons concurrently, at most
// BatchConcurrency at a time. Outcomes keep the order of reqs. The first
// failure cancels the remaining work.
func (s *ComparisonService) CompareAll(ctx context.Context, reqs []ComparisonRequest) ([]*ComparisonOutcome, error) {
	outcomes := make([]*ComparisonOutcome, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.analysis.BatchConcurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := s.Compare(gctx, req)
			if err != nil {
				return fmt.Errorf("comparison %d: %w", i, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("[ComparisonService] batch of %d failed: %v", len(reqs), err)
		return nil, err
	}

	s.logger.Info("[ComparisonService] batch of %d comparisons completed", len(reqs))
	return outcomes, nil
}

// PlotOptions returns the plot defaults for an outcome: configured dimensions
// and the group labels used in its descriptives.
func (s *ComparisonService) PlotOptions(outcome *ComparisonOutcome) groups.PlotOptions {
	opts := groups.DefaultPlotOptions()
	if s.plot.Width > 0 {
		opts.Width = s.plot.Width
	}
	if s.plot.Height > 0 {
		opts.Height = s.plot.Height
	}
	opts.LabelA = outcome.Descriptives.GroupA.Label
	opts.LabelB = outcome.Descriptives.GroupB.Label
	if outcome.Query != nil {
		opts.XLabel = outcome.Query.ValueColumn
	}
	return opts
}

// Plot renders the overlaid histograms of an outcome into w.
func (o *ComparisonOutcome) Plot(w io.Writer, opts groups.PlotOptions) error {
	if o.analysis == nil {
		return core.NewNotComputedError("plot")
	}
	return o.analysis.PlotDistributions(w, opts)
}

func (s *ComparisonService) resolveKind(kind comparison.TestKind) (comparison.TestKind, error) {
	if kind == "" {
		return s.analysis.DefaultTest, nil
	}
	parsed, err := comparison.ParseTestKind(string(kind))
	if err != nil {
		return "", core.NewInvalidInputError("test", err.Error())
	}
	return parsed, nil
}

func (s *ComparisonService) loadSamples(ctx context.Context, req ComparisonRequest) ([]float64, []float64, *comparison.SamplePair, error) {
	if req.Query == nil {
		return req.GroupA, req.GroupB, nil, nil
	}
	if len(req.GroupA) > 0 || len(req.GroupB) > 0 {
		return nil, nil, nil, core.NewInvalidInputError("query", "inline samples and a query are mutually exclusive")
	}
	if s.source == nil {
		return nil, nil, nil, core.NewInvalidInputError("query", "no sample source configured")
	}

	pair, err := s.source.LoadSamples(ctx, *req.Query)
	if err != nil {
		return nil, nil, nil, err
	}
	if pair.Skipped > 0 {
		s.logger.Warn("[ComparisonService] %s: skipped %d rows with missing or unparseable %s",
			s.source.Name(), pair.Skipped, req.Query.ValueColumn)
	}
	return pair.GroupA, pair.GroupB, pair, nil
}

func labels(req ComparisonRequest) (string, string) {
	labelA, labelB := req.LabelA, req.LabelB
	if labelA == "" {
		labelA = groups.DefaultLabelA
		if req.Query != nil {
			labelA = req.Query.GroupA
		}
	}
	if labelB == "" {
		labelB = groups.DefaultLabelB
		if req.Query != nil {
			labelB = req.Query.GroupB
		}
	}
	return labelA, labelB
}
