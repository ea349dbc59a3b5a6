package handler

import (
	"encoding/xml"
	"net/http"
	"time"

	"bizbranches/internal/businesses/service"
	"bizbranches/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type staticPage struct {
	path       string
	changeFreq string
	priority   string
}

var staticPages = []staticPage{
	{path: "/", changeFreq: "daily", priority: "1.0"},
	{path: "/search", changeFreq: "daily", priority: "0.9"},
	{path: "/add", changeFreq: "monthly", priority: "0.8"},
	{path: "/about", changeFreq: "monthly", priority: "0.5"},
	{path: "/contact", changeFreq: "monthly", priority: "0.5"},
	{path: "/privacy", changeFreq: "yearly", priority: "0.3"},
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type SitemapHandler struct {
	businesses service.BusinessService
	baseURL    string
	log        *logger.Logger
}

func NewSitemapHandler(businesses service.BusinessService, baseURL string, log *logger.Logger) *SitemapHandler {
	return &SitemapHandler{businesses: businesses, baseURL: baseURL, log: log}
}

func (h *SitemapHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/sitemap.xml", h.Sitemap)
}

// Sitemap renders the static pages plus one entry per business slug. Slug
// enumeration failure degrades to the static pages alone.
func (h *SitemapHandler) Sitemap(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]urlEntry, 0, len(staticPages)),
	}
	for _, page := range staticPages {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        h.baseURL + page.path,
			ChangeFreq: page.changeFreq,
			Priority:   page.priority,
		})
	}

	slugs, err := h.businesses.AllSlugs(r.Context())
	if err != nil {
		h.log.Error("Sitemap slug enumeration failed", "error", err)
		slugs = nil
	}
	lastMod := time.Now().UTC().Format("2006-01-02")
	for _, slug := range slugs {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        h.baseURL + "/business/" + slug,
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		h.log.Error("Failed to write sitemap", "error", err)
		return
	}
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		h.log.Error("Failed to encode sitemap", "error", err)
	}
}
