package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"social_caption_generator/logger"
)

const DefaultTimeout = 60 * time.Second

// Options tunes how an Agent talks to the model.
type Options struct {
	Instructions Instructions
	// Timeout bounds one whole generation (all three calls). Zero means DefaultTimeout.
	Timeout time.Duration
	// Concurrent issues the three calls in parallel instead of one after another.
	Concurrent bool
	// RequestsPerMinute paces model calls; zero or less disables pacing.
	RequestsPerMinute int
	Logger            logger.Logger
}

// Agent turns a topic, tone and niche into a Record with three model calls.
type Agent struct {
	llm          LLMClient
	instructions Instructions
	timeout      time.Duration
	concurrent   bool
	limiter      *rate.Limiter
	log          logger.Logger
}

func NewAgent(llm LLMClient, opts Options) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{
		llm:          llm,
		instructions: opts.Instructions.withDefaults(),
		timeout:      opts.Timeout,
		concurrent:   opts.Concurrent,
		log:          opts.Logger,
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if a.log == nil {
		a.log = logger.Log
	}
	if opts.RequestsPerMinute > 0 {
		a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 3)
	}
	return a, nil
}

// Generate runs the title, captions and hashtags calls and assembles a Record.
// Platform is left empty for the caller to set. Any failed call fails the
// whole generation with a *GenerationError.
func (a *Agent) Generate(ctx context.Context, topic string, tone Tone, niche Niche) (Record, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Record{}, ErrEmptyTopic
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	reqID := uuid.NewString()
	start := time.Now()
	a.log.Infof("[generate] id=%s topic=%q tone=%s niche=%s concurrent=%t", reqID, topic, tone, niche, a.concurrent)

	prompts := map[Stage]Prompt{
		StageTitle:    BuildTitlePrompt(a.instructions, topic, tone),
		StageCaptions: BuildCaptionsPrompt(a.instructions, topic, tone),
		StageHashtags: BuildHashtagsPrompt(a.instructions, topic, niche),
	}
	stages := []Stage{StageTitle, StageCaptions, StageHashtags}
	raw := make([]string, len(stages))

	if a.concurrent {
		eg, egCtx := errgroup.WithContext(ctx)
		for i, stage := range stages {
			i, stage := i, stage
			eg.Go(func() error {
				out, err := a.complete(egCtx, stage, prompts[stage])
				if err != nil {
					return err
				}
				raw[i] = out
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			a.log.Errorf("[generate] id=%s failed: %v", reqID, err)
			return Record{}, err
		}
	} else {
		for i, stage := range stages {
			out, err := a.complete(ctx, stage, prompts[stage])
			if err != nil {
				a.log.Errorf("[generate] id=%s failed: %v", reqID, err)
				return Record{}, err
			}
			raw[i] = out
		}
	}

	rec := Record{
		Topic:    topic,
		Tone:     tone,
		Niche:    niche,
		Title:    NormalizeTitle(raw[0]),
		Captions: SplitCaptions(raw[1]),
		Hashtags: SplitHashtags(raw[2]),
	}
	a.log.Infof("[generate] id=%s done in %s captions=%d hashtags=%d", reqID, time.Since(start).Round(time.Millisecond), len(rec.Captions), len(rec.Hashtags))
	return rec, nil
}

func (a *Agent) complete(ctx context.Context, stage Stage, prompt Prompt) (string, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			// Wait refuses early when the next token lands past the deadline.
			if _, ok := ctx.Deadline(); ok && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
			}
			return "", &GenerationError{Stage: stage, Err: err}
		}
	}
	start := time.Now()
	out, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		// SDKs don't always wrap the context error; keep it visible to errors.Is.
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return "", &GenerationError{Stage: stage, Err: err}
	}
	a.log.Debugf("[generate] stage=%s took %s", stage, time.Since(start).Round(time.Millisecond))
	return out, nil
}
