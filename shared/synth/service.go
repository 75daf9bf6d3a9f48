package synth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kacperborowieckb/gen-csv/shared/messaging"
	"github.com/kacperborowieckb/gen-csv/utils/metrics"
	"golang.org/x/sync/semaphore"
)

// MaxOutputTokens caps the length of a single generation.
const MaxOutputTokens = 2000

const publishTimeout = 5 * time.Second

// Generator turns a prompt into raw model text.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt, maxTokens int) (string, error)
	Model() string
}

// LoadFunc builds a Generator. It is called lazily and retried on the next
// request after a failure.
type LoadFunc func(ctx context.Context) (Generator, error)

type EventPublisher interface {
	PublishDatasetGenerated(ctx context.Context, event messaging.DatasetGeneratedEvent) error
}

type Config struct {
	APIKey       string
	SystemPrompt SystemPrompt
	// Timeout bounds one generation call; zero means no limit beyond the request context.
	Timeout time.Duration
	// MaxConcurrent is the number of generations allowed in flight. Defaults to 1.
	MaxConcurrent int64
}

// Result is a successful generation.
type Result struct {
	ID            string       `json:"id"`
	CSV           string       `json:"csv"`
	Model         string       `json:"model"`
	PromptVersion string       `json:"promptVersion"`
	Report        OutputReport `json:"report"`
}

type Service struct {
	cfg       Config
	load      LoadFunc
	publisher EventPublisher
	slots     *semaphore.Weighted

	mu  sync.Mutex
	gen Generator
}

// NewService wires a generation service. publisher may be nil.
func NewService(cfg Config, load LoadFunc, publisher EventPublisher) *Service {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	return &Service{
		cfg:       cfg,
		load:      load,
		publisher: publisher,
		slots:     semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// Generate runs one request end to end. Every returned error is a *Error.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	res, err := s.generate(ctx, req)
	if err != nil {
		metrics.ObserveOutcome(string(KindOf(err)))
		return nil, err
	}

	metrics.ObserveOutcome("ok")
	return res, nil
}

func (s *Service) generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return nil, newError(KindMissingCredential, nil)
	}

	in, err := Resolve(req)
	if err != nil {
		log.Printf("Rejected generation request: %v", err)
		return nil, err
	}

	prompt := BuildPrompt(s.cfg.SystemPrompt, in)

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, newError(KindGeneration, fmt.Errorf("waiting for a generation slot: %w", err))
	}
	defer s.slots.Release(1)

	gen, err := s.generator(ctx)
	if err != nil {
		return nil, err
	}

	genCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	id := uuid.New().String()
	log.Printf("Generation %s: sending %d bytes of prompt to %s (schema: %v)", id, len(prompt.System)+len(prompt.User), gen.Model(), in.HasSchema())

	start := time.Now()
	raw, err := invoke(genCtx, gen, prompt)
	if err != nil {
		log.Printf("Generation %s failed after %s: %v", id, time.Since(start), err)
		return nil, newError(KindGeneration, err)
	}

	text := Clean(raw)
	if text == "" {
		return nil, newError(KindGeneration, errors.New("model returned an empty response"))
	}

	report := Inspect(text, expectedCaption(in))
	metrics.ObserveGeneration(time.Since(start), report.Rows, report.OK())
	if !report.OK() {
		log.Printf("Generation %s returned malformed CSV, passing through: %s", id, strings.Join(report.Warnings, "; "))
	}

	log.Printf("Generation %s: received %d bytes in %s", id, len(text), time.Since(start))

	res := &Result{
		ID:            id,
		CSV:           text,
		Model:         gen.Model(),
		PromptVersion: prompt.Version,
		Report:        report,
	}

	s.publish(ctx, in, res)

	return res, nil
}

// expectedCaption is the title line the prompt asks the model to write.
func expectedCaption(in *Input) string {
	if in.Description != "" {
		return in.Description
	}

	return DefaultCaption
}

// generator returns the loaded generator, loading it on first need.
func (s *Service) generator(ctx context.Context) (Generator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != nil {
		return s.gen, nil
	}

	gen, err := guard(func() (Generator, error) { return s.load(ctx) })
	metrics.ObserveModelLoad(err)
	if err != nil {
		log.Printf("Failed to load model: %v", err)
		return nil, newError(KindModelLoad, err)
	}

	log.Printf("Model %s loaded", gen.Model())
	s.gen = gen

	return gen, nil
}

func invoke(ctx context.Context, gen Generator, prompt Prompt) (string, error) {
	return guard(func() (string, error) { return gen.Generate(ctx, prompt, MaxOutputTokens) })
}

// guard converts a panic in fn into an error.
func guard[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn()
}

func (s *Service) publish(ctx context.Context, in *Input, res *Result) {
	if s.publisher == nil {
		return
	}

	event := messaging.DatasetGeneratedEvent{
		GenerationID:  res.ID,
		Model:         res.Model,
		PromptVersion: res.PromptVersion,
		Description:   in.Description,
		Rows:          res.Report.Rows,
		CSVBytes:      len(res.CSV),
		WellFormed:    res.Report.OK(),
		GeneratedAt:   time.Now().UTC(),
	}
	if in.HasSchema() {
		event.Columns = in.Schema.Columns
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishDatasetGenerated(pubCtx, event); err != nil {
		log.Printf("Failed to publish DatasetGeneratedEvent for %s: %v", res.ID, err)
	}
}
