// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/truthx/internal/articles"
	"github.com/tomtom215/truthx/internal/config"
	"github.com/tomtom215/truthx/internal/contentstore"
	"github.com/tomtom215/truthx/internal/detection"
	"github.com/tomtom215/truthx/internal/logging"
	"github.com/tomtom215/truthx/internal/metrics"
	"github.com/tomtom215/truthx/internal/probe"
)

// ContentStore is the part of the content store the orchestrator uses.
type ContentStore interface {
	Acquire(id string) *contentstore.Lease
}

// Prober extracts media metadata and video soundtracks.
type Prober interface {
	Available(ctx context.Context) bool
	Probe(ctx context.Context, path string) (*probe.MediaMetadata, error)
	ExtractAudio(ctx context.Context, path, dir string) (*probe.AudioTrack, error)
}

// ArticleSearcher finds related articles for text queries.
type ArticleSearcher interface {
	Search(ctx context.Context, query string) ([]articles.Article, error)
}

// Options configures the orchestrator.
type Options struct {
	RequestTimeout  time.Duration
	DetectorTimeout time.Duration

	// DetectorTimeouts overrides DetectorTimeout per detector name.
	DetectorTimeouts map[string]time.Duration

	MaxConcurrent int64

	// ScratchDir holds extracted soundtracks; empty means the system temp dir.
	ScratchDir string
}

// OptionsFromConfig derives orchestrator options from configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	timeouts := make(map[string]time.Duration)
	for name, d := range map[string]time.Duration{
		detection.NameVideoDeepfake:     cfg.Detectors.Video.Timeout,
		detection.NameAudioVoiceClone:   cfg.Detectors.Audio.Timeout,
		detection.NameImageManipulation: cfg.Detectors.Image.Timeout,
		detection.NameTextOrigin:        cfg.Detectors.Text.Timeout,
	} {
		if d > 0 {
			timeouts[name] = d
		}
	}
	return Options{
		RequestTimeout:   cfg.Analysis.RequestTimeout,
		DetectorTimeout:  cfg.Analysis.DetectorTimeout,
		DetectorTimeouts: timeouts,
		MaxConcurrent:    int64(cfg.Analysis.MaxConcurrent),
		ScratchDir:       cfg.Probe.ScratchDir,
	}
}

// Orchestrator runs analysis requests. It is safe for concurrent use.
type Orchestrator struct {
	store    ContentStore
	registry *detection.Registry
	prober   Prober
	articles ArticleSearcher
	sem      *semaphore.Weighted
	opts     Options
}

// New creates an orchestrator. searcher may be nil.
func New(store ContentStore, registry *detection.Registry, prober Prober, searcher ArticleSearcher, opts Options) *Orchestrator {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}
	if opts.DetectorTimeout <= 0 {
		opts.DetectorTimeout = 90 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	return &Orchestrator{
		store:    store,
		registry: registry,
		prober:   prober,
		articles: searcher,
		sem:      semaphore.NewWeighted(opts.MaxConcurrent),
		opts:     opts,
	}
}

// Run analyzes one request. For uploads the stored content is deleted
// before or shortly after Run returns, whatever the outcome.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()

	var lease *contentstore.Lease
	if req.ContentID != "" {
		lease = o.store.Acquire(req.ContentID)
		defer lease.Close()
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !o.sem.TryAcquire(1) {
		return nil, fmt.Errorf("%w: too many analyses in flight", ErrBackendUnavailable)
	}
	defer o.sem.Release(1)

	metrics.AnalysesInFlight.Inc()
	defer metrics.AnalysesInFlight.Dec()

	if req.ID != "" {
		ctx = logging.ContextWithAnalysisID(ctx, req.ID)
	}
	ctx, cancel := context.WithTimeout(ctx, o.opts.RequestTimeout)
	defer cancel()

	var (
		out *Outcome
		err error
	)
	if lease != nil {
		out, err = o.runMedia(ctx, req, lease)
	} else {
		out, err = o.runText(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	out.Duration = time.Since(start)

	logging.Ctx(ctx).Info().
		Str("kind", string(req.Kind)).
		Int("detectors", len(out.Results)).
		Dur("duration", out.Duration).
		Msg("Analysis finished")
	return out, nil
}

func (o *Orchestrator) runMedia(ctx context.Context, req Request, lease *contentstore.Lease) (*Outcome, error) {
	content, err := lease.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	if !content.Modality.CanAnalyzeAs(req.Kind) {
		return nil, errors.Join(ErrInvalidRequest,
			fmt.Errorf("%s content cannot be analyzed as %s", content.Modality, req.Kind))
	}

	if !o.prober.Available(ctx) {
		return nil, fmt.Errorf("%w: neither ffprobe nor ffmpeg available", ErrBackendUnavailable)
	}
	path, cleanup, err := lease.LocalFile(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataExtraction, err)
	}
	var cleanupOnce sync.Once
	release := func() { cleanupOnce.Do(cleanup) }
	defer release()

	md, err := o.probe(ctx, path)
	if err != nil {
		return nil, err
	}

	in := detection.Input{
		Modality: req.Kind,
		MimeType: content.MimeType,
		Content:  lease,
		Metadata: md,
	}
	var jobs []job
	for _, d := range o.registry.ForModality(req.Kind) {
		if req.Kind != contentstore.ModalityVideo || d.Name() != detection.NameAudioVoiceClone {
			jobs = append(jobs, job{detector: d, input: in})
			continue
		}
		// Voice-clone runs on the soundtrack of videos that have one.
		if !md.HasAudio() {
			continue
		}
		track, err := o.prober.ExtractAudio(ctx, path, o.opts.ScratchDir)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Soundtrack extraction failed")
			failed := detection.Failed(d.Name(), "audio track could not be extracted")
			jobs = append(jobs, job{detector: d, preset: &failed})
			continue
		}
		defer func() {
			if err := track.Remove(); err != nil {
				logging.Ctx(ctx).Error().Err(err).Msg("Failed to remove extracted soundtrack")
			}
		}()
		audio := in
		audio.Modality = contentstore.ModalityAudio
		audio.MimeType = probe.AudioTrackMimeType
		audio.Content = track
		jobs = append(jobs, job{detector: d, input: audio})
	}
	release()

	return &Outcome{
		Results:  o.fanOut(ctx, jobs, lease),
		Metadata: md,
	}, nil
}

func (o *Orchestrator) probe(ctx context.Context, path string) (*probe.MediaMetadata, error) {
	md, err := o.prober.Probe(ctx, path)
	switch {
	case errors.Is(err, probe.ErrUnavailable):
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrMetadataExtraction, err)
	}
	return md, nil
}

func (o *Orchestrator) runText(ctx context.Context, req Request) (*Outcome, error) {
	out := &Outcome{}

	type lookup struct {
		found []articles.Article
		err   error
	}
	var related chan lookup
	if o.articles != nil {
		related = make(chan lookup, 1)
		go func() {
			found, err := o.articles.Search(ctx, req.Text)
			related <- lookup{found, err}
		}()
	}

	in := detection.Input{Modality: contentstore.ModalityText, Text: req.Text}
	var jobs []job
	for _, d := range o.registry.ForModality(contentstore.ModalityText) {
		jobs = append(jobs, job{detector: d, input: in})
	}
	out.Results = o.fanOut(ctx, jobs, nil)

	if related != nil {
		select {
		case r := <-related:
			if r.err != nil {
				logging.Ctx(ctx).Warn().Err(r.err).Msg("Related article lookup failed")
				out.Notes = append(out.Notes, "Related article lookup failed; no articles attached.")
			}
			out.Articles = r.found
		case <-ctx.Done():
			out.Notes = append(out.Notes, "Related article lookup timed out; no articles attached.")
		}
	}
	return out, nil
}

// job is one detector run. A job with a preset result settles without
// running the detector.
type job struct {
	detector detection.Detector
	input    detection.Input
	preset   *detection.Result
}

// fanOut runs jobs concurrently and returns one result per job, in job
// order. Each job settles by its own deadline whether or not the detector
// honours its context.
func (o *Orchestrator) fanOut(ctx context.Context, jobs []job, lease *contentstore.Lease) []detection.Result {
	g := &fanIn{
		results: make([]detection.Result, len(jobs)),
		settled: make([]bool, len(jobs)),
		held:    make([]bool, len(jobs)),
		lease:   lease,
	}

	var wg sync.WaitGroup
	for i, j := range jobs {
		name := j.detector.Name()
		if j.preset != nil {
			g.settle(i, *j.preset)
			metrics.RecordDetectorRun(name, string(j.preset.Status), 0)
			continue
		}
		if lease != nil && j.input.Content == detection.ContentSource(lease) {
			if !lease.Hold() {
				g.settle(i, detection.Failed(name, "content no longer available"))
				continue
			}
			g.held[i] = true
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			o.watch(ctx, g, i, j)
		}()
	}
	wg.Wait()

	return g.snapshot()
}

func (o *Orchestrator) timeoutFor(name string) time.Duration {
	if t, ok := o.opts.DetectorTimeouts[name]; ok {
		return t
	}
	return o.opts.DetectorTimeout
}

// watch settles slot i with the job's result, or with a timeout once the
// detector's deadline passes. A result delivered after the deadline is
// discarded.
func (o *Orchestrator) watch(ctx context.Context, g *fanIn, i int, j job) {
	name := j.detector.Name()
	log := logging.CtxWith(ctx).Str("detector", name).Logger()
	dctx, cancel := context.WithTimeout(ctx, o.timeoutFor(name))
	defer cancel()
	deadline, _ := dctx.Deadline()

	type delivery struct {
		res detection.Result
		at  time.Time
	}
	start := time.Now()
	done := make(chan delivery, 1)
	go func() {
		res := o.runDetector(dctx, j.detector, j.input)
		done <- delivery{res, time.Now()}
	}()

	var res detection.Result
	select {
	case d := <-done:
		res = d.res
		late := !d.at.Before(deadline)
		if late || (res.Status != detection.StatusOK && errors.Is(dctx.Err(), context.DeadlineExceeded)) {
			res = detection.TimedOut(name)
		}
	case <-dctx.Done():
		res = detection.TimedOut(name)
		log.Warn().Dur("timeout", o.timeoutFor(name)).Msg("Detector missed its deadline; result discarded")
	}

	res.Detector = name
	res.Duration = time.Since(start)
	if g.settle(i, res) {
		metrics.RecordDetectorRun(name, string(res.Status), res.Duration)
	}
}

// runDetector converts a detector panic into a failed result.
func (o *Orchestrator) runDetector(ctx context.Context, d detection.Detector, in detection.Input) (res detection.Result) {
	defer func() {
		if p := recover(); p != nil {
			logging.Ctx(ctx).Error().
				Str("detector", d.Name()).
				Interface("panic", p).
				Str("stack", string(debug.Stack())).
				Msg("Detector panicked")
			res = detection.Failed(d.Name(), "detector crashed")
		}
	}()
	return d.Analyze(ctx, in)
}

// fanIn collects detector results. Each slot settles once; settling a
// slot that held a lease reference releases it.
type fanIn struct {
	mu      sync.Mutex
	results []detection.Result
	settled []bool
	held    []bool
	lease   *contentstore.Lease
}

// settle records r for slot i unless the slot already settled.
func (f *fanIn) settle(i int, r detection.Result) bool {
	f.mu.Lock()
	if f.settled[i] {
		f.mu.Unlock()
		return false
	}
	f.settled[i] = true
	f.results[i] = r
	release := f.held[i]
	f.mu.Unlock()

	if release {
		f.lease.Release()
	}
	return true
}

func (f *fanIn) snapshot() []detection.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]detection.Result(nil), f.results...)
}
