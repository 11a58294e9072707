package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/scanner"
)

// RSSScanner reads RSS and Atom feeds.
type RSSScanner struct {
	client     *http.Client
	userAgent  string
	maxSummary int
}

// NewRSSScanner wires an HTTP client shared by every feed request.
func NewRSSScanner(client *http.Client, opts *Options) *RSSScanner {
	o := opts.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}
	return &RSSScanner{
		client:     client,
		userAgent:  o.UserAgent,
		maxSummary: o.MaxSummary,
	}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan fetches the feed and converts at most MaxItems entries.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.CandidateItem, error) {
	fp := gofeed.NewParser()
	fp.Client = s.client
	fp.UserAgent = s.userAgent

	feed, err := fp.ParseURLWithContext(req.Source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	limit := req.MaxItems
	if limit <= 0 || limit > len(feed.Items) {
		limit = len(feed.Items)
	}

	items := make([]domain.CandidateItem, 0, limit)
	for _, entry := range feed.Items {
		if len(items) == limit {
			break
		}
		if entry == nil || strings.TrimSpace(entry.Link) == "" || strings.TrimSpace(entry.Title) == "" {
			continue
		}

		summary := entry.Description
		if strings.TrimSpace(summary) == "" {
			summary = entry.Content
		}

		items = append(items, scanner.NewItem(
			req.Source,
			htmlToText(entry.Title),
			entry.Link,
			domain.Truncate(htmlToText(summary), s.maxSummary),
			publishedAt(entry),
			req.CollectedAt,
		))
	}
	return items, nil
}

func publishedAt(entry *gofeed.Item) *time.Time {
	switch {
	case entry.PublishedParsed != nil:
		t := entry.PublishedParsed.UTC()
		return &t
	case entry.UpdatedParsed != nil:
		t := entry.UpdatedParsed.UTC()
		return &t
	default:
		return nil
	}
}

// htmlToText drops markup and collapses whitespace.
func htmlToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(s)
	}
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
