package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"social_caption_generator/generator"
	"social_caption_generator/history"
	"social_caption_generator/logger"
)

//go:embed web/index.html
var embeddedTemplates embed.FS

// Generator is the orchestration step the server drives.
type Generator interface {
	Generate(ctx context.Context, topic string, tone generator.Tone, niche generator.Niche) (generator.Record, error)
}

type Server struct {
	gen     Generator
	store   history.Store
	log     logger.Logger
	tmpl    *template.Template
	timeout time.Duration
}

func New(gen Generator, store history.Store, log logger.Logger) (*Server, error) {
	if gen == nil {
		return nil, errors.New("generator required")
	}
	if store == nil {
		return nil, errors.New("history store required")
	}
	if log == nil {
		log = logger.Log
	}
	tmpl, err := template.New("index.html").Funcs(templateFuncs).ParseFS(embeddedTemplates, "web/index.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		gen:   gen,
		store: store,
		log:   log,
		tmpl:  tmpl,
		// the agent enforces its own timeout; this only caps a stuck request
		timeout: 5 * time.Minute,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /generate", s.handleGenerateForm)
	mux.HandleFunc("POST /api/generate", s.handleGenerateAPI)
	mux.HandleFunc("GET /api/history", s.handleHistoryAPI)
	mux.HandleFunc("GET /api/options", s.handleOptionsAPI)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return logMiddleware(s.log, mux)
}

// --- Generation ---

// GenerateRequest is the form/JSON input of one generation.
type GenerateRequest struct {
	Topic    string `json:"topic"`
	Tone     string `json:"tone"`
	Niche    string `json:"niche"`
	Platform string `json:"platform"`
}

type generateOutcome struct {
	Record generator.Record
	// SaveErr is set when generation succeeded but the record was not kept.
	SaveErr error
}

// generate validates req, runs the agent and saves the record. Nothing is
// saved when generation fails.
func (s *Server) generate(ctx context.Context, req GenerateRequest) (generateOutcome, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return generateOutcome{}, generator.ErrEmptyTopic
	}
	tone, err := generator.ParseTone(req.Tone)
	if err != nil {
		return generateOutcome{}, err
	}
	niche, err := generator.ParseNiche(req.Niche)
	if err != nil {
		return generateOutcome{}, err
	}
	platform, err := generator.ParsePlatform(req.Platform)
	if err != nil {
		return generateOutcome{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, err := s.gen.Generate(ctx, req.Topic, tone, niche)
	if err != nil {
		return generateOutcome{}, err
	}
	rec.Platform = platform

	// the save must not be abandoned because the client went away
	if err := s.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		s.log.Errorf("[server] save history: %v", err)
		return generateOutcome{Record: rec, SaveErr: err}, nil
	}
	return generateOutcome{Record: rec}, nil
}

func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := GenerateRequest{
		Topic:    r.PostForm.Get("topic"),
		Tone:     r.PostForm.Get("tone"),
		Niche:    r.PostForm.Get("niche"),
		Platform: r.PostForm.Get("platform"),
	}
	data := s.newPageData(tabGenerate, req)

	out, err := s.generate(r.Context(), req)
	status := http.StatusOK
	switch {
	case errors.Is(err, generator.ErrEmptyTopic):
		data.Info = "Please enter a topic to generate content."
	case errors.Is(err, generator.ErrInvalidOption):
		status = http.StatusBadRequest
		data.Error = err.Error()
	case err != nil:
		status = generationStatus(err)
		data.Error = "Generation failed: " + err.Error()
	default:
		view := newRecordView(out.Record)
		data.Result = &view
		if out.SaveErr != nil {
			data.Warning = "The result could not be saved to history: " + out.SaveErr.Error()
		}
	}
	s.fillHistory(r.Context(), &data)
	s.render(w, status, data)
}

func (s *Server) handleGenerateAPI(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.generate(r.Context(), req)
	switch {
	case errors.Is(err, generator.ErrEmptyTopic), errors.Is(err, generator.ErrInvalidOption):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, generationStatus(err), err)
		return
	}
	if out.SaveErr != nil {
		w.Header().Set("X-History-Warning", out.SaveErr.Error())
	}
	writeJSON(w, http.StatusOK, out.Record)
}

func generationStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// --- History ---

// loadHistory never fails: a corrupt history is reported as a warning and
// treated as empty.
func (s *Server) loadHistory(ctx context.Context) ([]generator.Record, string) {
	records, err := s.store.Load(ctx)
	if err == nil {
		return records, ""
	}
	var corrupt *history.CorruptHistoryError
	if errors.As(err, &corrupt) {
		logger.WarnWithFields(s.log, "history unreadable, showing empty history", logger.Fields{"error": err.Error()})
		return []generator.Record{}, "Saved history could not be read and will be replaced on the next save."
	}
	s.log.Errorf("[server] load history: %v", err)
	return []generator.Record{}, "Saved history could not be loaded: " + err.Error()
}

func (s *Server) handleHistoryAPI(w http.ResponseWriter, r *http.Request) {
	records, warning := s.loadHistory(r.Context())
	if warning != "" {
		w.Header().Set("X-History-Warning", warning)
	}
	writeJSON(w, http.StatusOK, records)
}

type optionsResp struct {
	Tones     []generator.Tone     `json:"tones"`
	Niches    []generator.Niche    `json:"niches"`
	Platforms []generator.Platform `json:"platforms"`
}

func (s *Server) handleOptionsAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, optionsResp{
		Tones:     generator.Tones(),
		Niches:    generator.Niches(),
		Platforms: generator.Platforms(),
	})
}

// --- Helpers ---

type errorResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResp{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		logger.InfoWithFields(log, "http request", logger.Fields{
			"method":      r.Method,
			"path":        path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}
