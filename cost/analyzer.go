package cost

import (
	"context"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	tfjson "github.com/hashicorp/terraform-json"
	"github.com/rs/zerolog"

	"terraform-cost-analyzer/classify"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/plan"
	"terraform-cost-analyzer/pricing"
)

// Config wires an Analyzer. Source is the only required field.
type Config struct {
	Source      pricing.Source
	ProjectName string
	Environment string
	Currency    string
	Concurrency int
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// Analyzer runs the full pipeline: parse, classify, estimate,
// aggregate. A single analysis is one stateless pass; resource
// estimates fan out to a bounded worker pool and fan back in before
// aggregation.
type Analyzer struct {
	parser      *plan.Parser
	estimator   *Estimator
	aggregator  *Aggregator
	logger      zerolog.Logger
	projectName string
	concurrency int
}

// NewAnalyzer validates the configuration and builds the pipeline.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.Source == nil {
		return nil, &errors.ConfigurationError{Field: "Source", Reason: "a pricing source is required"}
	}
	if cfg.Concurrency < 0 {
		return nil, &errors.ConfigurationError{Field: "Concurrency", Reason: "must not be negative"}
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName = "terraform"
	}

	estimator := NewEstimator(cfg.Source).
		WithEnvironment(cfg.Environment).
		WithLogger(cfg.Logger)
	if cfg.Timeout > 0 {
		estimator = estimator.WithTimeout(cfg.Timeout)
	}

	return &Analyzer{
		parser:      plan.NewParser(classify.NewClassifier()),
		estimator:   estimator,
		aggregator:  NewAggregator(cfg.Currency),
		logger:      cfg.Logger,
		projectName: cfg.ProjectName,
		concurrency: cfg.Concurrency,
	}, nil
}

// Parser exposes the analyzer's parser for callers that need raw
// extraction alongside a full analysis.
func (a *Analyzer) Parser() *plan.Parser {
	return a.parser
}

// AnalyzeFile parses a plan file and analyzes it.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, previous *CostAnalysis) (*CostAnalysis, error) {
	tfplan, err := a.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, tfplan, previous)
}

// Analyze runs one analysis pass over a decoded plan.
func (a *Analyzer) Analyze(ctx context.Context, tfplan *tfjson.Plan, previous *CostAnalysis) (*CostAnalysis, error) {
	parsed, err := a.parser.ExtractResources(tfplan)
	if err != nil {
		return nil, err
	}

	a.logger.Info().Int("resources", len(parsed)).Msg("extracted resources from plan")

	estimated, err := a.estimateAll(ctx, parsed)
	if err != nil {
		return nil, err
	}

	summary := a.aggregator.Aggregate(estimated, previous)
	modules := a.aggregator.GroupModules(estimated, previous)

	resources := make([]ResourceCost, len(estimated))
	unpriced := 0
	for i, rc := range estimated {
		resources[i] = *rc
		if !rc.Priced {
			unpriced++
		}
	}

	analysis := &CostAnalysis{
		ID:              uuid.New(),
		ProjectName:     a.projectName,
		Timestamp:       time.Now().UTC(),
		ProviderRegions: a.providerRegions(tfplan),
		Modules:         modules,
		Resources:       resources,
		Summary:         summary,
		Currency:        summary.Currency,
		Metadata: map[string]string{
			"terraform_version":  tfplan.TerraformVersion,
			"format_version":     tfplan.FormatVersion,
			"unpriced_resources": strconv.Itoa(unpriced),
		},
	}

	a.logger.Info().
		Int("total", summary.TotalResources).
		Int("unpriced", unpriced).
		Str("monthly_cost", summary.TotalMonthlyCost.StringFixed(2)).
		Msg("analysis complete")

	return analysis, nil
}

// estimateAll prices resources concurrently. Records are independent
// of each other, so each worker operates on its own index; the only
// synchronization point is the final join.
func (a *Analyzer) estimateAll(ctx context.Context, parsed []plan.ParsedResource) ([]*ResourceCost, error) {
	results := make([]*ResourceCost, len(parsed))

	workers := a.concurrency
	if workers > len(parsed) {
		workers = len(parsed)
	}
	if workers <= 1 {
		for i, res := range parsed {
			rc, err := a.estimator.Estimate(ctx, res)
			if err != nil {
				return nil, err
			}
			results[i] = rc
		}
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rc, err := a.estimator.Estimate(ctx, parsed[i])
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				results[i] = rc
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range parsed {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// providerRegions lists the distinct (provider, region) pairs seen in
// the plan, sorted for stable output.
func (a *Analyzer) providerRegions(tfplan *tfjson.Plan) []ProviderRegion {
	var pairs []ProviderRegion
	for provider, regions := range a.parser.ExtractRegions(tfplan) {
		for region := range regions {
			pairs = append(pairs, ProviderRegion{Provider: provider, Region: region})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Provider != pairs[j].Provider {
			return pairs[i].Provider < pairs[j].Provider
		}
		return pairs[i].Region < pairs[j].Region
	})
	return pairs
}
