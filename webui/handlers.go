package webui

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// frontDoorAllowed reports whether req was forwarded by the expected Front
// Door profile.
func (r *router) frontDoorAllowed(req *http.Request) bool {
	id := req.Header.Get(FrontDoorHeader)
	if id == "" {
		return false
	}
	return r.config.FrontDoorID == "" || id == r.config.FrontDoorID
}

func (r *router) handleIndex(w http.ResponseWriter, req *http.Request) {
	if !r.frontDoorAllowed(req) {
		r.config.Logger.Warn("request without front door id", "remote_addr", req.RemoteAddr)
		r.renderPage(w, http.StatusOK, "fd.html", PageData{Title: "Front Door"})
		return
	}
	r.config.Logger.Debug("front door id", "id", req.Header.Get(FrontDoorHeader))

	data := PageData{Sentiments: r.config.Sentiments}
	if req.Method != http.MethodPost {
		r.renderPage(w, http.StatusOK, "index.html", data)
		return
	}

	data.Prompt = strings.TrimSpace(req.PostFormValue("text"))
	data.Sentiment = strings.TrimSpace(req.PostFormValue("dropdown"))
	if data.Prompt == "" || data.Sentiment == "" {
		data.Status = "400 Bad Request: text and sentiment are required"
		r.renderPage(w, http.StatusBadRequest, "index.html", data)
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), r.config.Timeout)
	defer cancel()

	status, tweet, err := r.invoker.invoke(ctx, data.Prompt, data.Sentiment)
	if err != nil {
		data.Status = err.Error()
		var invokeErr *InvokeError
		if errors.As(err, &invokeErr) && invokeErr.Status == 0 {
			data.Status = "request failed: " + err.Error()
		}
		r.config.Logger.Error("invoke tweet service failed", "status", status, "error", err)
		r.renderPage(w, http.StatusOK, "index.html", data)
		return
	}

	r.config.Logger.Info("tweet generated", "status", status)
	data.Status = strconv.Itoa(status)
	data.Tweet = tweet
	data.TweetHTML = r.renderer.tweetHTML(tweet)
	r.renderPage(w, http.StatusOK, "index.html", data)
}

func (r *router) renderPage(w http.ResponseWriter, status int, page string, data PageData) {
	if err := r.renderer.render(w, status, page, data); err != nil {
		r.config.Logger.Error("render page failed", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
