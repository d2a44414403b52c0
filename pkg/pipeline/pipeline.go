package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/lexanon/lexanon/internal"
	"github.com/lexanon/lexanon/pkg/extractors"
	"github.com/lexanon/lexanon/pkg/models"
)

var log = internal.GetLogger()

// Pipeline sequences Extract -> Resolve -> Score -> threshold filter over
// one text, and fans out independent per-text invocations for batches.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	appState  *models.AppState
	extractor *extractors.CandidateExtractor
}

func NewPipeline(appState *models.AppState) *Pipeline {
	return &Pipeline{
		appState:  appState,
		extractor: extractors.NewCandidateExtractor(appState),
	}
}

// Analyze runs the full pipeline for a single text. The stages run
// sequentially; each consumes the complete output of the previous one.
func (p *Pipeline) Analyze(
	ctx context.Context,
	req *models.AnalyzeRequest,
) (*models.AnalyzeResponse, error) {
	startTime := time.Now()

	if strings.TrimSpace(req.Text) == "" {
		return nil, models.ErrEmptyText
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeHybrid
	}

	language := p.appState.Config.NLP.Language
	if req.Language != "" && req.Language != language {
		log.Warnf("Unsupported language: %s, using %s models", req.Language, language)
	}

	log.Infof("Analyzing text: %d characters, mode: %s", len(req.Text), mode)

	candidates := p.extractor.Extract(
		ctx,
		req.Text,
		mode,
		req.EntityTypes,
		req.IncludePatternMatches,
	)

	resolved := ResolveSpans(candidates)
	log.Infof("Deduplication: %d -> %d entities", len(candidates), len(resolved))

	scored := ScoreEntities(resolved)

	filtered := filterEntities(scored, req.ConfidenceThreshold, req.EntityTypes)
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Start != filtered[j].Start {
			return filtered[i].Start < filtered[j].Start
		}
		return filtered[i].End < filtered[j].End
	})

	var results []models.EntityResult
	if err := copier.Copy(&results, &filtered); err != nil {
		return nil, fmt.Errorf("failed to copy entities to results: %w", err)
	}
	if results == nil {
		results = []models.EntityResult{}
	}

	response := &models.AnalyzeResponse{
		RequestID:      uuid.New().String(),
		Entities:       results,
		Statistics:     buildStatistics(len(candidates), len(resolved), filtered),
		ProcessingTime: time.Since(startTime).Seconds(),
	}

	log.Infof(
		"Analysis complete: %d entities found in %.3fs",
		len(results),
		response.ProcessingTime,
	)
	return response, nil
}

// AnalyzeBatch fans out one pipeline invocation per text, bounded by the
// configured maximum batch size. Failures are isolated per item; siblings
// are never cancelled. All invocations are joined before returning.
func (p *Pipeline) AnalyzeBatch(
	ctx context.Context,
	req *models.BatchRequest,
) (*models.BatchResponse, error) {
	startTime := time.Now()

	maxBatch := p.appState.Config.Extraction.MaxBatchSize
	if len(req.Texts) > maxBatch {
		return nil, models.NewBatchTooLargeError(len(req.Texts), maxBatch)
	}

	log.Infof("Batch analysis: %d texts", len(req.Texts))

	type outcome struct {
		response *models.AnalyzeResponse
		err      error
	}
	outcomes := make([]outcome, len(req.Texts))

	var wg sync.WaitGroup
	for i, text := range req.Texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			// Per-index errors come from invalid item input or a recovered
			// panic. Oracle failures degrade inside extraction, so those
			// items still succeed with pattern-derived candidates only.
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = outcome{err: fmt.Errorf("analysis panic: %v", r)}
				}
			}()
			itemReq := &models.AnalyzeRequest{
				Text:                  text,
				Mode:                  req.Mode,
				Language:              req.Language,
				EntityTypes:           req.EntityTypes,
				ConfidenceThreshold:   req.ConfidenceThreshold,
				IncludePatternMatches: req.IncludePatternMatches,
			}
			response, err := p.Analyze(ctx, itemReq)
			outcomes[i] = outcome{response: response, err: err}
		}(i, text)
	}
	wg.Wait()

	results := make([]models.BatchItemResult, 0, len(req.Texts))
	itemErrors := make([]models.BatchItemError, 0)
	for i, o := range outcomes {
		if o.err != nil {
			itemErrors = append(itemErrors, models.BatchItemError{Index: i, Error: o.err.Error()})
			continue
		}
		results = append(results, models.BatchItemResult{Index: i, Result: o.response})
	}

	return &models.BatchResponse{
		Results:        results,
		Errors:         itemErrors,
		ProcessingTime: time.Since(startTime).Seconds(),
		TotalTexts:     len(req.Texts),
		Successful:     len(results),
		Failed:         len(itemErrors),
	}, nil
}

// filterEntities keeps entities meeting the confidence threshold. The
// allow-list was already applied during extraction and is re-checked on
// the final output.
func filterEntities(
	entities []models.Entity,
	threshold float64,
	entityTypes []models.Label,
) []models.Entity {
	var allowed map[models.Label]bool
	if len(entityTypes) > 0 {
		allowed = make(map[models.Label]bool, len(entityTypes))
		for _, label := range entityTypes {
			allowed[label] = true
		}
	}

	filtered := make([]models.Entity, 0, len(entities))
	for _, entity := range entities {
		if entity.Confidence < threshold {
			continue
		}
		if allowed != nil && !allowed[entity.Label] {
			continue
		}
		filtered = append(filtered, entity)
	}
	return filtered
}

func buildStatistics(totalCandidates, afterDedup int, filtered []models.Entity) models.Statistics {
	stats := models.Statistics{
		TotalCandidates: totalCandidates,
		AfterDedup:      afterDedup,
		AfterFilter:     len(filtered),
		ByLabel:         make(map[models.Label]int),
		BySource:        make(map[models.Source]int),
	}
	for i := range filtered {
		stats.ByLabel[filtered[i].Label]++
		stats.BySource[filtered[i].Source]++
	}
	return stats
}
