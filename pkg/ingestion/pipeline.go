package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/traceai/engine/internal/errors"
	"github.com/traceai/engine/pkg/graph"
	"github.com/traceai/engine/pkg/ir"
	"github.com/traceai/engine/pkg/parsers"
	"github.com/traceai/engine/pkg/vectorindex"
)

// Config parameterizes one ingestion run. Grounded on the teacher's
// IngestionConfig, trimmed to what discovery/admission/parse/commit over a
// local directory actually needs.
type Config struct {
	ProjectID     string
	RootDir       string
	IncludeGlobs  []string
	ExcludeGlobs  []string
	MaxConcurrent int    // default 10, per spec's default max_concurrent_parsers
	CheckpointDir string // empty disables checkpointing
	SkipUnchanged bool
}

// RunReport summarizes one ingestion run, returned by Coordinator.Run.
// Mirrors the shape of the teacher's IngestionResult.
type RunReport struct {
	ProjectID           string
	RunID               string
	DocumentsDiscovered int
	DocumentsAdmitted   int
	DocumentsSkipped    int
	DocumentsUnchanged  int
	DocumentsCommitted  int
	ParseErrors         int
	ParseErrorRate      float64
	SkipReasons         map[string]int
	ParseErrorDetails   []string
	Unresolved          []graph.UnresolvedRef
	ParseDuration       time.Duration
	CommitDuration      time.Duration
	TotalDuration       time.Duration
}

// Coordinator drives one ingestion run: discover -> admit -> parse (bounded
// parallel) -> commit (serial, arrival order) -> resolve deferred
// references. Grounded on the teacher's LocalPipeline.Run.
type Coordinator struct {
	cfg        Config
	registry   *parsers.Registry
	graph      *graph.Graph
	index      vectorindex.Index
	embedder   vectorindex.Embedder
	logger     *slog.Logger
	checkpoint *CheckpointManager
}

// NewCoordinator wires a config, parser registry, graph, and vector index
// into a Coordinator. embedder/index may be nil to skip semantic indexing.
func NewCoordinator(cfg Config, registry *parsers.Registry, g *graph.Graph, index vectorindex.Index, embedder vectorindex.Embedder, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{cfg: cfg, registry: registry, graph: g, index: index, embedder: embedder, logger: logger}
}

type parseJob struct {
	index int
	path  string
}

type parseOutcome struct {
	index int
	path  string
	hash  string
	doc   *ir.ParsedDocument
	err   error
}

// Run executes one full ingestion pass over cfg.RootDir.
func (c *Coordinator) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	runID := uuid.NewString()

	cfg := c.cfg
	report := &RunReport{ProjectID: cfg.ProjectID, RunID: runID, SkipReasons: map[string]int{}}

	discovered, err := Discover(cfg.RootDir, cfg.IncludeGlobs, cfg.ExcludeGlobs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "discovery failed", err)
	}
	report.DocumentsDiscovered = len(discovered.Paths)
	for reason, count := range discovered.SkipReasons {
		report.SkipReasons[reason] = count
	}

	var checkpoint *Checkpoint
	if cfg.CheckpointDir != "" {
		c.checkpoint = NewCheckpointManager(cfg.CheckpointDir)
		checkpoint, err = c.checkpoint.Load(cfg.ProjectID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, "load checkpoint failed", err)
		}
	}
	if checkpoint == nil {
		checkpoint = &Checkpoint{ProjectID: cfg.ProjectID, FileHashes: map[string]string{}}
	}

	var admitted []string
	for _, path := range discovered.Paths {
		if _, ok := c.registry.ParserFor(path); !ok {
			report.DocumentsSkipped++
			report.SkipReasons["unsupported_format"]++
			continue
		}
		admitted = append(admitted, path)
	}
	report.DocumentsAdmitted = len(admitted)

	parseStart := time.Now()
	outcomes, skippedUnchanged := c.parseParallel(ctx, admitted, checkpoint, cfg.SkipUnchanged, c.workers())
	report.ParseDuration = time.Since(parseStart)
	report.DocumentsUnchanged = skippedUnchanged

	// Commits are processed in the order parse results arrive on the
	// results channel, not submission order.
	commitStart := time.Now()
	for _, outcome := range outcomes {
		if outcome.err != nil {
			report.ParseErrors++
			ingMetrics.init()
			ingMetrics.parseErrors.Inc()
			if len(report.ParseErrorDetails) < 20 {
				report.ParseErrorDetails = append(report.ParseErrorDetails, fmt.Sprintf("%s: %v", outcome.path, outcome.err))
			}
			continue
		}
		if outcome.doc == nil {
			continue // unchanged, skipped
		}
		if _, err := c.graph.AddDocument(ctx, outcome.doc); err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, "commit document failed", err)
		}
		checkpoint.FileHashes[outcome.path] = outcome.hash
		report.DocumentsCommitted++
		ingMetrics.init()
		ingMetrics.documentsCommitted.Inc()

		if c.index != nil && c.embedder != nil {
			if err := c.indexDocument(ctx, outcome.doc); err != nil {
				c.logger.Warn("ingestion.index.warning", "path", outcome.path, "err", err)
			}
		}
	}
	report.CommitDuration = time.Since(commitStart)

	unresolved, err := c.graph.ResolveDeferredReferences(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "resolve deferred references failed", err)
	}
	report.Unresolved = unresolved
	ingMetrics.init()
	ingMetrics.deferredUnresolved.Set(float64(len(unresolved)))

	if len(admitted) > 0 {
		report.ParseErrorRate = float64(report.ParseErrors) / float64(len(admitted))
	}
	report.TotalDuration = time.Since(start)

	if c.checkpoint != nil {
		if err := c.checkpoint.Save(checkpoint); err != nil {
			c.logger.Warn("ingestion.checkpoint.save.warning", "err", err)
		}
	}

	c.logger.Info("ingestion.run.complete",
		"run_id", runID,
		"discovered", report.DocumentsDiscovered,
		"committed", report.DocumentsCommitted,
		"parse_errors", report.ParseErrors,
		"duration_ms", report.TotalDuration.Milliseconds(),
	)
	return report, nil
}

func (c *Coordinator) workers() int {
	if c.cfg.MaxConcurrent > 0 {
		return c.cfg.MaxConcurrent
	}
	return 10
}

// parseParallel parses admitted files with a bounded worker pool, skipping
// any whose content hash is unchanged from checkpoint when skipUnchanged is
// set. Grounded on the teacher's parseFilesParallel job-channel pattern.
func (c *Coordinator) parseParallel(ctx context.Context, paths []string, checkpoint *Checkpoint, skipUnchanged bool, workers int) ([]parseOutcome, int) {
	if len(paths) == 0 {
		return nil, 0
	}
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan parseJob, len(paths))
	results := make(chan parseOutcome, len(paths))
	var unchanged int32

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				outcome := c.parseOne(ctx, job, checkpoint, skipUnchanged)
				if outcome.err == nil && outcome.doc == nil {
					atomic.AddInt32(&unchanged, 1)
				}
				results <- outcome
			}
		}()
	}
	for i, p := range paths {
		jobs <- parseJob{index: i, path: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]parseOutcome, 0, len(paths))
	for r := range results {
		outcomes = append(outcomes, r)
	}
	return outcomes, int(unchanged)
}

func (c *Coordinator) parseOne(ctx context.Context, job parseJob, checkpoint *Checkpoint, skipUnchanged bool) parseOutcome {
	data, err := os.ReadFile(job.path)
	if err != nil {
		return parseOutcome{index: job.index, path: job.path, err: fmt.Errorf("read file: %w", err)}
	}
	hash := ir.ContentHash(data)
	if skipUnchanged {
		if prev, ok := checkpoint.FileHashes[job.path]; ok && prev == hash {
			return parseOutcome{index: job.index, path: job.path, hash: hash}
		}
	}

	parser, ok := c.registry.ParserFor(job.path)
	if !ok {
		return parseOutcome{index: job.index, path: job.path, err: fmt.Errorf("no parser registered")}
	}
	doc, err := parser.Parse(ctx, job.path, data)
	if err != nil {
		return parseOutcome{index: job.index, path: job.path, err: err}
	}
	return parseOutcome{index: job.index, path: job.path, hash: hash, doc: doc}
}

// indexDocument embeds and upserts every Component and DataEntity a
// ParsedDocument introduced, keeping the vector index consistent with the
// graph one commit at a time (spec §8 property 7).
func (c *Coordinator) indexDocument(ctx context.Context, doc *ir.ParsedDocument) error {
	var entries []vectorindex.Entry
	for _, comp := range doc.Components {
		text := comp.Name
		if comp.Description != "" {
			text += ": " + comp.Description
		}
		vec, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return err
		}
		entries = append(entries, vectorindex.Entry{
			ID: comp.ID, Text: text, Vector: vec,
			Metadata: map[string]string{"node_kind": "component", "component_type": comp.ComponentType},
		})
	}
	for _, ent := range doc.DataEntities {
		vec, err := c.embedder.Embed(ctx, ent.Name)
		if err != nil {
			return err
		}
		entries = append(entries, vectorindex.Entry{
			ID: ent.ID, Text: ent.Name, Vector: vec,
			Metadata: map[string]string{"node_kind": "data_entity", "entity_type": string(ent.EntityType)},
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return c.index.Upsert(ctx, entries...)
}
