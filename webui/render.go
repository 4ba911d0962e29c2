package webui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

//go:embed templates/*
var templatesFS embed.FS

// PageData contains the data of every page.
type PageData struct {
	Title      string
	Sentiments []string

	// Status is the outcome of the last call to the tweet service: the
	// HTTP status, or the error when the call failed.
	Status string

	Tweet     string
	TweetHTML template.HTML
	Prompt    string
	Sentiment string
}

// renderer handles template rendering.
type renderer struct {
	baseTemplate *template.Template
	policy       *bluemonday.Policy
	markdown     goldmark.Markdown
}

// newRenderer parses the base layout. Pages are parsed into a clone on every
// render so their "content" blocks never collide.
func newRenderer() *renderer {
	return &renderer{
		baseTemplate: template.Must(template.New("").ParseFS(templatesFS, "templates/base.html")),
		policy:       bluemonday.UGCPolicy(),
		markdown:     goldmark.New(),
	}
}

// render renders page inside the base layout with status code status.
func (r *renderer) render(w http.ResponseWriter, status int, page string, data PageData) error {
	tmpl, err := r.baseTemplate.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}

	pageTemplatePath := "templates/" + page
	if _, err := tmpl.ParseFS(templatesFS, pageTemplatePath); err != nil {
		return fmt.Errorf("parse page template %s: %w", pageTemplatePath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// tweetHTML renders a tweet as Markdown and strips anything unsafe.
func (r *renderer) tweetHTML(tweet string) template.HTML {
	if tweet == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(tweet), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(tweet))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}
