package generator_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_caption_generator/generator"
	"social_caption_generator/logger"
)

var testInstructions = generator.Instructions{Title: "T", Captions: "C", Hashtags: "H"}

// scriptedLLM answers by system instruction, so each stage can be scripted.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   []generator.Prompt
}

func (s *scriptedLLM) Complete(_ context.Context, p generator.Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	if err := s.errs[p.System]; err != nil {
		return "", err
	}
	return s.replies[p.System], nil
}

func (s *scriptedLLM) userPrompts() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for _, c := range s.calls {
		out[c.System] = c.User
	}
	return out
}

func newAgent(t *testing.T, llm generator.LLMClient, opts generator.Options) *generator.Agent {
	t.Helper()
	if opts.Instructions == (generator.Instructions{}) {
		opts.Instructions = testInstructions
	}
	opts.Logger = logger.NewLogger("error")
	agent, err := generator.NewAgent(llm, opts)
	require.NoError(t, err)
	return agent
}

func TestNewAgentRequiresClient(t *testing.T) {
	_, err := generator.NewAgent(nil, generator.Options{})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		name := "sequential"
		if concurrent {
			name = "concurrent"
		}
		t.Run(name, func(t *testing.T) {
			llm := &scriptedLLM{replies: map[string]string{
				"T": "  Best Brew Ever \n",
				"C": "Coffee first.\n\n   Always.  \r\n",
				"H": "#coffee #morning\n#brew",
			}}
			agent := newAgent(t, llm, generator.Options{Concurrent: concurrent})

			rec, err := agent.Generate(context.Background(), "coffee", generator.ToneCasual, generator.NicheFood)
			require.NoError(t, err)

			assert.Equal(t, generator.Record{
				Topic:    "coffee",
				Tone:     generator.ToneCasual,
				Niche:    generator.NicheFood,
				Title:    "Best Brew Ever",
				Captions: []string{"Coffee first.", "Always."},
				Hashtags: []string{"coffee", "morning", "brew"},
			}, rec)
			assert.Empty(t, rec.Platform)

			assert.Equal(t, map[string]string{
				"T": "Topic: coffee\nTone: Casual",
				"C": "Topic: coffee\nTone: Casual",
				"H": "Topic: coffee\nNiche: Food",
			}, llm.userPrompts())
		})
	}
}

func TestGenerateEmptyTopic(t *testing.T) {
	llm := &scriptedLLM{}
	agent := newAgent(t, llm, generator.Options{})

	_, err := agent.Generate(context.Background(), "   ", generator.ToneFunny, generator.NicheTravel)
	assert.ErrorIs(t, err, generator.ErrEmptyTopic)
	assert.Empty(t, llm.calls)
}

func TestGenerateFailsOnAnyStage(t *testing.T) {
	stages := map[string]generator.Stage{
		"T": generator.StageTitle,
		"C": generator.StageCaptions,
		"H": generator.StageHashtags,
	}
	for system, stage := range stages {
		for _, concurrent := range []bool{false, true} {
			boom := errors.New("upstream 503")
			llm := &scriptedLLM{
				replies: map[string]string{"T": "title", "C": "caption", "H": "tag"},
				errs:    map[string]error{system: boom},
			}
			agent := newAgent(t, llm, generator.Options{Concurrent: concurrent})

			rec, err := agent.Generate(context.Background(), "coffee", generator.ToneCasual, generator.NicheFood)
			require.Error(t, err, "stage %s concurrent=%t", stage, concurrent)
			assert.Zero(t, rec)

			var genErr *generator.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, stage, genErr.Stage)
			assert.ErrorIs(t, err, boom)
		}
	}
}

type blockingLLM struct{}

func (blockingLLM) Complete(ctx context.Context, _ generator.Prompt) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateTimeout(t *testing.T) {
	agent := newAgent(t, blockingLLM{}, generator.Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := agent.Generate(context.Background(), "coffee", generator.ToneCasual, generator.NicheFood)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	var genErr *generator.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, generator.StageTitle, genErr.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// opaqueLLM drops the context error the way some SDKs do.
type opaqueLLM struct{}

func (opaqueLLM) Complete(ctx context.Context, _ generator.Prompt) (string, error) {
	<-ctx.Done()
	return "", errors.New("request aborted")
}

func TestGenerateTimeoutKeepsDeadlineVisible(t *testing.T) {
	agent := newAgent(t, opaqueLLM{}, generator.Options{Timeout: 20 * time.Millisecond, Concurrent: true})

	_, err := agent.Generate(context.Background(), "coffee", generator.ToneCasual, generator.NicheFood)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "request aborted")
}

func TestGeneratePacingHonoursDeadline(t *testing.T) {
	llm := &scriptedLLM{replies: map[string]string{"T": "title", "C": "caption", "H": "tag"}}
	agent := newAgent(t, llm, generator.Options{
		Timeout:           200 * time.Millisecond,
		RequestsPerMinute: 1,
	})

	_, err := agent.Generate(context.Background(), "coffee", generator.ToneCasual, generator.NicheFood)
	require.NoError(t, err)

	// the burst is spent; the next token is a minute away
	start := time.Now()
	_, err = agent.Generate(context.Background(), "coffee", generator.ToneCasual, generator.NicheFood)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var genErr *generator.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, generator.StageTitle, genErr.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, llm.calls, 3)
}

func TestGenerateDefaultInstructions(t *testing.T) {
	def := generator.DefaultInstructions()
	llm := &scriptedLLM{replies: map[string]string{
		def.Title:    "Title",
		def.Captions: "one\ntwo",
		def.Hashtags: "a b",
	}}
	agent, err := generator.NewAgent(llm, generator.Options{Logger: logger.NewLogger("error")})
	require.NoError(t, err)

	rec, err := agent.Generate(context.Background(), "gym", generator.ToneInspiring, generator.NicheFitness)
	require.NoError(t, err)
	assert.Equal(t, "Title", rec.Title)
	assert.Equal(t, []string{"one", "two"}, rec.Captions)
	assert.Equal(t, []string{"a", "b"}, rec.Hashtags)
	assert.Len(t, llm.calls, 3)
}

func TestGenerateWithMockLLM(t *testing.T) {
	agent, err := generator.NewAgent(generator.MockLLM{}, generator.Options{
		Logger:            logger.NewLogger("error"),
		Concurrent:        true,
		RequestsPerMinute: 60000,
	})
	require.NoError(t, err)

	for _, tone := range generator.Tones() {
		for _, niche := range generator.Niches() {
			rec, err := agent.Generate(context.Background(), "cold brew", tone, niche)
			require.NoError(t, err)
			assert.NotEmpty(t, rec.Title)
			assert.NotEmpty(t, rec.Captions)
			require.NotEmpty(t, rec.Hashtags)
			for _, tag := range rec.Hashtags {
				assert.False(t, strings.Contains(tag, "#"), "hashtag %q", tag)
			}
		}
	}
}
