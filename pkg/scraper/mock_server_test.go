package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dyscraper/pkg/archive"
	"dyscraper/pkg/config"
	"dyscraper/pkg/database"
	"dyscraper/pkg/douyin"
	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/models"
	"dyscraper/pkg/ratelimit"
)

const testSignature = "DFSzswVLQDTANxyKtPHPLn9BXbHS"

var testLayout = archive.Layout{
	Scheme:    "oss",
	Bucket:    "datas-aigc",
	Namespace: "aigc",
	Category:  "short_play",
}

// mockPage is one canned listing response
type mockPage struct {
	StatusCode int           `json:"status_code"`
	MaxCursor  int64         `json:"max_cursor"`
	HasMore    interface{}   `json:"has_more"`
	AwemeList  []interface{} `json:"aweme_list"`
}

// mockDouyin serves the listing endpoint and media files
type mockDouyin struct {
	srv *httptest.Server

	mu        sync.Mutex
	pages     map[string]map[int64]mockPage
	cursors   map[string][]int64
	media     map[string][]byte
	unsigned  int
	mediaHits map[string]int
}

func newMockDouyin(t *testing.T) *mockDouyin {
	t.Helper()
	m := &mockDouyin{
		pages:     make(map[string]map[int64]mockPage),
		cursors:   make(map[string][]int64),
		media:     make(map[string][]byte),
		mediaHits: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(douyin.PostListEndpoint, m.handleList)
	mux.HandleFunc("/media/", m.handleMedia)
	m.srv = httptest.NewServer(mux)
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mockDouyin) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	secUID := q.Get("sec_user_id")
	cursor, _ := strconv.ParseInt(q.Get("max_cursor"), 10, 64)

	m.mu.Lock()
	if q.Get("X-Bogus") != testSignature {
		m.unsigned++
	}
	m.cursors[secUID] = append(m.cursors[secUID], cursor)
	page, ok := m.pages[secUID][cursor]
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func (m *mockDouyin) handleMedia(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	body, ok := m.media[r.URL.Path]
	m.mediaHits[r.URL.Path]++
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(body)
}

func (m *mockDouyin) setPage(secUID string, cursor int64, page mockPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages[secUID] == nil {
		m.pages[secUID] = make(map[int64]mockPage)
	}
	m.pages[secUID][cursor] = page
}

// serveMedia registers body under path and returns its absolute URL
func (m *mockDouyin) serveMedia(path string, body []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if body != nil {
		m.media[path] = body
	}
	return m.srv.URL + path
}

func (m *mockDouyin) requestedCursors(secUID string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.cursors[secUID]...)
}

// videoPost builds a listing entry whose media is served by m
func (m *mockDouyin) videoPost(id, desc, nickname string) map[string]interface{} {
	url := m.serveMedia("/media/"+id+".mp4", []byte("video-"+id))
	return map[string]interface{}{
		"aweme_id":    id,
		"desc":        desc,
		"create_time": 1690027200,
		"author":      map[string]interface{}{"uid": 1000 + len(id), "nickname": nickname},
		"video": map[string]interface{}{
			"play_addr": map[string]interface{}{"url_list": []string{url, url + "?backup=1"}},
		},
		"statistics": map[string]interface{}{
			"comment_count": 3, "digg_count": 42, "collect_count": 5, "share_count": 1,
		},
	}
}

func (m *mockDouyin) imagePost(id, nickname string, n int) map[string]interface{} {
	images := make([]map[string]interface{}, n)
	for i := range images {
		hi := m.serveMedia(fmt.Sprintf("/media/%s-%d.jpg", id, i), []byte("jpeg"))
		images[i] = map[string]interface{}{
			"url_list": []string{m.srv.URL + "/media/thumb.jpg", hi},
		}
	}
	return map[string]interface{}{
		"aweme_id": id,
		"desc":     "gallery " + id,
		"author":   map[string]interface{}{"uid": "42", "nickname": nickname},
		"images":   images,
	}
}

// fakeArchiver keeps uploaded objects in memory
type fakeArchiver struct {
	mu      sync.Mutex
	objects map[string][]byte
	refuse  map[string]bool
}

func newFakeArchiver() *fakeArchiver {
	return &fakeArchiver{objects: make(map[string][]byte), refuse: make(map[string]bool)}
}

func (a *fakeArchiver) Upload(ctx context.Context, key, localPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.refuse[key] {
		return errs.New(errs.ErrorTypeArchive, "upload refused for "+key)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	a.objects[key] = data
	return nil
}

func (a *fakeArchiver) keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := make([]string, 0, len(a.objects))
	for k := range a.objects {
		keys = append(keys, k)
	}
	return keys
}

type testPipeline struct {
	scraper   *Scraper
	repo      *database.Repository
	archiver  *fakeArchiver
	outputDir string
	log       *logger.TestLogger
}

func newTestPipeline(t *testing.T, m *mockDouyin) *testPipeline {
	t.Helper()
	log := logger.NewTestLogger()

	db, err := database.Open(config.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "media.db"),
		AutoMigrate: true,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	repo := database.NewRepository(db)

	client := douyin.NewClient(douyin.ClientOptions{
		Cookie:    "sessionid=test",
		UserAgent: config.DefaultUserAgent,
		Timeout:   10 * time.Second,
	}, log)
	signer := douyin.SignerFunc(func(ctx context.Context, unsignedURL, userAgent string) (string, error) {
		return testSignature, nil
	})
	builder := douyin.NewRequestBuilder(signer, config.DefaultUserAgent)

	arch := newFakeArchiver()
	walker := NewWalker(client, builder, ratelimit.Noop{}, WalkerOptions{
		BaseURL:  m.srv.URL,
		Layout:   testLayout,
		Location: time.UTC,
	}, log)
	fetcher := NewFetcher(client, arch, repo, FetcherOptions{Layout: testLayout}, log)

	out := t.TempDir()
	s := New(douyin.NewResolver(client), walker, NewRecorder(repo, log), repo, fetcher, Options{
		OutputDir:   out,
		Concurrency: 2,
		Images:      true,
	}, log)

	return &testPipeline{scraper: s, repo: repo, archiver: arch, outputDir: out, log: log}
}

func creator(name, secUID string) models.Creator {
	return models.Creator{Name: name, ProfileURL: "https://www.douyin.com/user/" + secUID + "?vid=1"}
}
