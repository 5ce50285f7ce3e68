package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// archive serves a tiny fanfiction-style site: an index linking two stories,
// the first with three chapters and the second with one.
type archive struct {
	mu       sync.Mutex
	requests map[string]int
	agents   []string
	broken   map[string]bool
}

func newArchive() *archive {
	return &archive{requests: map[string]int{}, broken: map[string]bool{}}
}

func (a *archive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.requests[r.URL.Path]++
	a.agents = append(a.agents, r.UserAgent())
	broken := a.broken[r.URL.Path]
	a.mu.Unlock()

	if broken {
		http.Error(w, "gone", http.StatusNotFound)
		return
	}

	switch r.URL.Path {
	case "/tv/Doctor-Who/":
		fmt.Fprint(w, `<html><body>
			<a class="stitle" href="/s/100/1/Blue-Box">Blue Box</a>
			<a class="stitle" href="/s/200/1/Red-Door">Red Door</a>
			<a class="stitle" href="/s/100/1/Blue-Box">Blue Box again</a>
			<a class="other" href="/s/999/1/Ignored">Ignored</a>
		</body></html>`)
	case "/s/100/1/Blue-Box":
		fmt.Fprint(w, storyPage("Blue Box ch1", `<select id="chap_select">
			<option value="1">1. Start</option>
			<option value="2">2. Middle</option>
			<option value="3">3. End</option>
		</select>`, "It was bigger on the inside.\nMuch bigger.", `"Run," said the Doctor.`))
	case "/s/100/2/Blue-Box":
		fmt.Fprint(w, storyPage("Blue Box ch2", "", "They ran."))
	case "/s/100/3/Blue-Box":
		fmt.Fprint(w, storyPage("Blue Box ch3", "", "They stopped."))
	case "/s/200/1/Red-Door":
		fmt.Fprint(w, storyPage("Red Door", "", "The door was red."))
	default:
		http.NotFound(w, r)
	}
}

func storyPage(title, chapters string, paragraphs ...string) string {
	body := ""
	for _, p := range paragraphs {
		body += "<p>" + p + "</p>"
	}
	return fmt.Sprintf(`<html><head><title>%s</title></head><body>
		%s
		<p>Outside the story text.</p>
		<div id="storytext">%s<p>   </p></div>
	</body></html>`, title, chapters, body)
}

func newTestWebProvider(t *testing.T, a *archive, cfg WebConfig) *WebProvider {
	t.Helper()
	server := httptest.NewServer(a)
	t.Cleanup(server.Close)

	cfg.IndexURL = server.URL + "/tv/Doctor-Who/"
	cfg.HTTPClient = server.Client()
	return NewWebProvider(cfg)
}

func TestNewWebProvider(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		p := NewWebProvider(WebConfig{})
		assert.Equal(t, defaultStoryLinkSelector, p.cfg.StoryLinkSelector)
		assert.Equal(t, defaultChapterSelector, p.cfg.ChapterSelector)
		assert.Equal(t, defaultPageCap, p.cfg.PageCap)
		assert.Equal(t, webTimeout, p.httpClient.Timeout)
	})

	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "web", NewWebProvider(WebConfig{}).Name())
	})
}

func TestWebProvider_Documents(t *testing.T) {
	t.Run("crawls stories and chapters", func(t *testing.T) {
		a := newArchive()
		cfg := DefaultWebConfig()
		cfg.UserAgent = "cadavre-test/1.0"
		planned := 0
		cfg.OnPlan = func(n int) { planned = n }
		p := newTestWebProvider(t, a, cfg)

		docs, err := Collect(context.Background(), p)
		require.NoError(t, err)
		require.Len(t, docs, 4)
		assert.Equal(t, 4, planned)

		assert.Equal(t, "Blue Box ch1", docs[0].Title)
		assert.Equal(t, [][]string{
			{"It was bigger on the inside.", "Much bigger."},
			{`"Run," said the Doctor.`},
		}, docs[0].Paragraphs)
		assert.Equal(t, "Blue Box ch2", docs[1].Title)
		assert.Equal(t, "Blue Box ch3", docs[2].Title)
		assert.Equal(t, "Red Door", docs[3].Title)
		assert.Contains(t, docs[3].URL, "/s/200/1/Red-Door")

		// Chapter one pages are fetched once, while planning.
		assert.Equal(t, 1, a.requests["/s/100/1/Blue-Box"])
		for _, agent := range a.agents {
			assert.Equal(t, "cadavre-test/1.0", agent)
		}
	})

	t.Run("page cap", func(t *testing.T) {
		cfg := DefaultWebConfig()
		cfg.PageCap = 2
		p := newTestWebProvider(t, newArchive(), cfg)

		docs, err := Collect(context.Background(), p)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Blue Box ch1", docs[0].Title)
		assert.Equal(t, "Blue Box ch2", docs[1].Title)
	})

	t.Run("skips broken chapter", func(t *testing.T) {
		a := newArchive()
		a.broken["/s/100/2/Blue-Box"] = true
		p := newTestWebProvider(t, a, DefaultWebConfig())

		docs, err := Collect(context.Background(), p)
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("skips broken story", func(t *testing.T) {
		a := newArchive()
		a.broken["/s/100/1/Blue-Box"] = true
		p := newTestWebProvider(t, a, DefaultWebConfig())

		docs, err := Collect(context.Background(), p)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Red Door", docs[0].Title)
	})

	t.Run("unreachable index fails", func(t *testing.T) {
		a := newArchive()
		a.broken["/tv/Doctor-Who/"] = true
		p := newTestWebProvider(t, a, DefaultWebConfig())

		_, err := Collect(context.Background(), p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch index")
	})

	t.Run("whole page when no content selector", func(t *testing.T) {
		cfg := DefaultWebConfig()
		cfg.ContentSelector = ""
		p := newTestWebProvider(t, newArchive(), cfg)

		docs, err := Collect(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, []string{"Outside the story text."}, docs[3].Paragraphs[0])
	})
}

func TestWebProvider_Pages(t *testing.T) {
	p := newTestWebProvider(t, newArchive(), DefaultWebConfig())

	pages, err := p.Pages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 4)
	assert.Contains(t, pages[1], "/s/100/2/Blue-Box")
	assert.Contains(t, pages[3], "/s/200/1/Red-Door")
}

func TestChapterURL(t *testing.T) {
	tests := []struct {
		story    string
		value    string
		expected string
	}{
		{"https://example.com/s/100/1/Title", "4", "https://example.com/s/100/4/Title"},
		{"https://example.com/s/100/1/Title/1/", "2", "https://example.com/s/100/2/Title/1/"},
		{"https://example.com/story", "3", "https://example.com/story"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChapterURL(tt.story, tt.value))
		})
	}
}
