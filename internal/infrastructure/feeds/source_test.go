package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPulse/internal/config"
	"NewsPulse/internal/logging"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>%s</title>
  <link>https://example.com</link>
  <description>test feed</description>
  %s
</channel>
</rss>`

func rssItem(title, link, description string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description><![CDATA[%s]]></description><pubDate>Sun, 19 Oct 2026 08:00:00 GMT</pubDate></item>`,
		title, link, description)
}

func feedServer(t *testing.T, feeds map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := feeds[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCollectMergesSourcesInOrder(t *testing.T) {
	t.Parallel()

	server := feedServer(t, map[string]string{
		"/a.xml": fmt.Sprintf(rssTemplate, "A",
			rssItem("OpenAI ships &lt;b&gt;GPT&lt;/b&gt;", "https://example.com/a1", "<p>New model &amp; tools.</p>")+
				rssItem("Sponsor message", "https://example.com/ad", "Brought to you by our sponsor")),
		"/b.xml": fmt.Sprintf(rssTemplate, "B",
			rssItem("Research note", "https://example.com/b1", "Plain text summary")+
				rssItem("Duplicate of A", "https://example.com/a1", "same link")),
	})

	sources := []config.SourceConfig{
		{Name: "A", URL: server.URL + "/a.xml", Type: "rss", Trust: 10, Category: "official"},
		{Name: "B", URL: server.URL + "/b.xml", Trust: 7, Category: "research"},
		{Name: "Broken", URL: server.URL + "/missing.xml", Trust: 5},
	}
	src := NewDefaultSource(sources, Options{ExcludeKeywords: []string{"sponsor"}}, logging.Discard())

	items, err := src.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "OpenAI ships GPT", items[0].Title)
	assert.Equal(t, "New model & tools.", items[0].Summary)
	assert.Equal(t, "A", items[0].SourceName)
	assert.Equal(t, 10, items[0].SourceTrust)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, "Research note", items[1].Title)
	assert.Equal(t, "B", items[1].SourceName)
	assert.Equal(t, 3, src.SourceCount())
}

func TestCollectCapsItemsAndSummary(t *testing.T) {
	t.Parallel()

	var entries strings.Builder
	for i := 0; i < 20; i++ {
		entries.WriteString(rssItem(fmt.Sprintf("Item %d", i), fmt.Sprintf("https://example.com/%d", i), strings.Repeat("word ", 200)))
	}
	server := feedServer(t, map[string]string{"/feed.xml": fmt.Sprintf(rssTemplate, "Big", entries.String())})

	src := NewDefaultSource([]config.SourceConfig{{Name: "Big", URL: server.URL + "/feed.xml", Trust: 5}},
		Options{MaxPerSource: 15, MaxSummary: 500}, logging.Discard())

	items, err := src.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 15)
	for _, it := range items {
		assert.LessOrEqual(t, len([]rune(it.Summary)), 500)
	}
}

func TestCollectFailsWhenEverySourceFails(t *testing.T) {
	t.Parallel()

	server := feedServer(t, map[string]string{})
	src := NewDefaultSource([]config.SourceConfig{
		{Name: "x", URL: server.URL + "/x.xml", Trust: 5},
		{Name: "y", URL: server.URL + "/y.xml", Trust: 5, Type: "unknown"},
	}, Options{}, logging.Discard())

	_, err := src.Collect(context.Background())
	assert.Error(t, err)
}

func TestCollectWithoutSources(t *testing.T) {
	t.Parallel()

	src := NewDefaultSource(nil, Options{}, logging.Discard())
	items, err := src.Collect(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hello world & friends", htmlToText("<p>Hello   <i>world</i></p> &amp; friends"))
	assert.Equal(t, "plain text", htmlToText("  plain\n text "))
}
