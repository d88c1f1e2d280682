package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"social_caption_generator/config"
	"social_caption_generator/generator"
	"social_caption_generator/history"
	"social_caption_generator/logger"
	"social_caption_generator/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var usage usageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// usageError marks command-line mistakes; they exit with status 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// run does all the work so deferred cleanup happens before main exits.
func run(args []string) error {
	fs := flag.NewFlagSet("social_caption_generator", flag.ContinueOnError)
	configPath := fs.String("config", "config.yaml", "path to config file (YAML or JSON)")
	envPath := fs.String("env", config.DefaultEnvFile, "path to .env file")
	serve := fs.Bool("serve", false, "start web server")
	addr := fs.String("addr", "", "http listen address when --serve (overrides config server_addr)")
	historyFile := fs.String("history-file", "", "history file (overrides config history.path)")
	topic := fs.String("topic", "", "post topic (one-shot generation)")
	tone := fs.String("tone", string(generator.ToneCasual), "tone: "+joinOptions(generator.Tones()))
	niche := fs.String("niche", string(generator.NicheOther), "niche: "+joinOptions(generator.Niches()))
	platform := fs.String("platform", string(generator.PlatformInstagram), "platform: "+joinOptions(generator.Platforms()))
	showHistory := fs.Bool("history", false, "print saved history and exit")
	verbose := fs.Bool("v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}

	if err := config.LoadEnv(*envPath); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *historyFile != "" {
		cfg.History.Path = *historyFile
	}
	log := logger.Init(logLevel(cfg.Logging.Level, *verbose))

	store, closer, err := history.Open(cfg.History, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	if *showHistory {
		records, err := store.Load(context.Background())
		if err != nil {
			return err
		}
		printJSON(records)
		return nil
	}

	if !*serve && *topic == "" {
		fs.Usage()
		return usageError{msg: "either --serve or --topic is required"}
	}

	// no credentials, nothing to do: fail before serving anything
	apiKey, err := cfg.APIKey()
	if err != nil {
		return err
	}
	llm, err := buildLLM(cfg, apiKey)
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(llm, generator.Options{
		Instructions: generator.Instructions{
			Title:    cfg.LLM.Instructions.Title,
			Captions: cfg.LLM.Instructions.Captions,
			Hashtags: cfg.LLM.Instructions.Hashtags,
		},
		Timeout:           cfg.LLM.Timeout,
		Concurrent:        cfg.LLM.Concurrent,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		Logger:            log,
	})
	if err != nil {
		return err
	}

	if *serve {
		srv, err := server.New(agent, store, log)
		if err != nil {
			return err
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		return runServer(listen, srv.Routes(), log)
	}

	return generateOnce(agent, store, *topic, *tone, *niche, *platform)
}

// logLevel lets -v win over LOG_LEVEL, which wins over the config file.
func logLevel(cfgLevel string, verbose bool) string {
	if verbose {
		return "debug"
	}
	return logger.LevelFromEnv("LOG_LEVEL", cfgLevel)
}

func buildLLM(cfg config.Config, apiKey string) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   apiKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "gemini":
		return generator.NewGeminiLLMFromConfig(context.Background(), settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func runServer(listen string, h http.Handler, log logger.Logger) error {
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting web server on %s", listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func generateOnce(agent *generator.Agent, store history.Store, topic, tone, niche, platform string) error {
	t, err := generator.ParseTone(tone)
	if err != nil {
		return err
	}
	n, err := generator.ParseNiche(niche)
	if err != nil {
		return err
	}
	p, err := generator.ParsePlatform(platform)
	if err != nil {
		return err
	}
	rec, err := agent.Generate(context.Background(), topic, t, n)
	if err != nil {
		return err
	}
	rec.Platform = p
	printJSON(rec)
	return store.Save(context.Background(), rec)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func joinOptions[T ~string](opts []T) string {
	s := make([]string, len(opts))
	for i, o := range opts {
		s[i] = string(o)
	}
	return strings.Join(s, ", ")
}
