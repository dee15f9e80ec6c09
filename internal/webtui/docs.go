package webtui

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"stock-cli/internal/docs"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	// Raw HTML stays escaped: no html.WithUnsafe().
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

func renderMarkdownHTML(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return template.HTML("")
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(b.String())
}

type docsVM struct {
	Topic  string
	Title  string
	Body   template.HTML
	Topics []docLink
}

type docLink struct {
	Topic string
	Title string
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")
	if topic == "" {
		topic = "keys"
	}
	md, ok := docs.Get(topic)
	if !ok {
		http.NotFound(w, r)
		return
	}
	vm := docsVM{Topic: topic, Title: docs.Title(topic), Body: renderMarkdownHTML(md)}
	for _, t := range docs.Topics() {
		vm.Topics = append(vm.Topics, docLink{Topic: t, Title: docs.Title(t)})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "docs.html", vm); err != nil {
		s.cfg.Log.Error("render docs page", "topic", topic, "error", err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
