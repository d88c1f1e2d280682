package server

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"social_caption_generator/generator"
)

const (
	tabGenerate = "generate"
	tabHistory  = "history"
)

// Model output often carries light Markdown (**bold**, _italic_). Raw HTML in
// it is dropped by goldmark's default renderer.
var markdown = goldmark.New()

var templateFuncs = template.FuncMap{
	"hashtags": hashtagLine,
}

type pageData struct {
	Tab       string
	Tones     []generator.Tone
	Niches    []generator.Niche
	Platforms []generator.Platform
	Form      GenerateRequest

	Result  *recordView
	Info    string
	Error   string
	Warning string

	History        []recordView
	HistoryWarning string
}

type recordView struct {
	generator.Record
	TitleHTML    template.HTML
	CaptionsHTML []template.HTML
}

func newRecordView(rec generator.Record) recordView {
	v := recordView{Record: rec, TitleHTML: inlineMarkdown(rec.Title)}
	for _, c := range rec.Captions {
		v.CaptionsHTML = append(v.CaptionsHTML, inlineMarkdown(c))
	}
	return v
}

// inlineMarkdown renders one line of Markdown without the wrapping paragraph.
func inlineMarkdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return template.HTML(out)
}

func hashtagLine(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, "#"+strings.TrimSpace(t))
	}
	return strings.Join(parts, " ")
}

func (s *Server) newPageData(tab string, form GenerateRequest) pageData {
	if form.Tone == "" {
		form.Tone = string(generator.ToneCasual)
	}
	if form.Niche == "" {
		form.Niche = string(generator.NicheFood)
	}
	if form.Platform == "" {
		form.Platform = string(generator.PlatformInstagram)
	}
	return pageData{
		Tab:       tab,
		Tones:     generator.Tones(),
		Niches:    generator.Niches(),
		Platforms: generator.Platforms(),
		Form:      form,
	}
}

func (s *Server) fillHistory(ctx context.Context, data *pageData) {
	records, warning := s.loadHistory(ctx)
	data.HistoryWarning = warning
	data.History = make([]recordView, 0, len(records))
	for _, rec := range records {
		data.History = append(data.History, newRecordView(rec))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tab := tabGenerate
	if r.URL.Query().Get("tab") == tabHistory {
		tab = tabHistory
	}
	data := s.newPageData(tab, GenerateRequest{})
	s.fillHistory(r.Context(), &data)
	s.render(w, http.StatusOK, data)
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		s.log.Errorf("[server] render page: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
