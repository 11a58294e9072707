package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/scanner"
)

const (
	arxivBaseURL = "https://arxiv.org"
)

var dateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// ArxivScanner reads arXiv listing pages (/list/<category>/new) for sources
// configured with type "arxiv".
type ArxivScanner struct {
	client     *http.Client
	userAgent  string
	pageSize   int
	maxSummary int
}

// NewArxivScanner wires an HTTP client; pageSize defaults to 50.
func NewArxivScanner(client *http.Client, opts *Options) *ArxivScanner {
	o := opts.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}
	return &ArxivScanner{
		client:     client,
		userAgent:  o.UserAgent,
		pageSize:   50,
		maxSummary: o.MaxSummary,
	}
}

// Name identifies the strategy inside the registry.
func (a *ArxivScanner) Name() string {
	return "arxiv"
}

// Scan walks listing pages until MaxItems entries were read or the listing ends.
func (a *ArxivScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.CandidateItem, error) {
	if req.Source.URL == "" {
		return nil, fmt.Errorf("no listing url for source %s", req.Source.Name)
	}

	limit := req.MaxItems
	if limit <= 0 {
		limit = a.pageSize
	}

	results := make([]domain.CandidateItem, 0, limit)
	seen := map[string]struct{}{}
	skip := 0
	for len(results) < limit {
		pageURL, err := buildPageURL(req.Source.URL, skip, a.pageSize)
		if err != nil {
			return nil, err
		}

		doc, err := a.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		entries := a.extractItems(doc, req)
		for _, item := range entries {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			results = append(results, item)
			if len(results) == limit {
				break
			}
		}

		if len(entries) < a.pageSize {
			break
		}
		skip += a.pageSize
	}

	return results, nil
}

func (a *ArxivScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (a *ArxivScanner) extractItems(doc *goquery.Document, req scanner.Request) []domain.CandidateItem {
	var collected []domain.CandidateItem
	doc.Find("dl > dt").Each(func(_ int, dt *goquery.Selection) {
		item, ok := parseEntry(dt, dt.Next(), req.Source, req.CollectedAt)
		if !ok {
			return
		}
		item.Summary = domain.Truncate(item.Summary, a.maxSummary)
		collected = append(collected, item)
	})
	return collected
}

func parseEntry(dt, dd *goquery.Selection, src scanner.Source, collectedAt time.Time) (domain.CandidateItem, bool) {
	link := dt.Find("a[href*=\"/abs/\"]").First()
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return domain.CandidateItem{}, false
	}
	if !strings.HasPrefix(href, "http") {
		href = strings.TrimSuffix(arxivBaseURL, "/") + href
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimPrefix(title, "Title:")
	title = collapseSpace(title)
	if title == "" {
		return domain.CandidateItem{}, false
	}

	summary := dd.Find("p.mathjax").First().Text()
	summary = strings.TrimPrefix(strings.TrimSpace(summary), "Abstract:")
	summary = collapseSpace(summary)

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}

	var published *time.Time
	if match := dateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			published = &parsed
		}
	}

	return scanner.NewItem(src, title, href, summary, published, collectedAt), true
}

func buildPageURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
