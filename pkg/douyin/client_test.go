package douyin

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(ClientOptions{
		Cookie:    "sessionid=abc",
		UserAgent: "test-agent/1.0",
		Timeout:   5 * time.Second,
	}, logger.NewTestLogger())
}

func TestClientSendsSessionHeaders(t *testing.T) {
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var out map[string]interface{}
	require.NoError(t, newTestClient(t).GetJSON(context.Background(), server.URL, &out))

	assert.Equal(t, "sessionid=abc", headers.Get("Cookie"))
	assert.Equal(t, "test-agent/1.0", headers.Get("User-Agent"))
	assert.Equal(t, Referer, headers.Get("Referer"))
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"status_code":0,"max_cursor":42,"has_more":1,"aweme_list":[]}`))
		case "/garbage":
			_, _ = w.Write([]byte(`<html>captcha</html>`))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	client := newTestClient(t)
	ctx := context.Background()

	var page PostListResponse
	require.NoError(t, client.GetJSON(ctx, server.URL+"/ok", &page))
	assert.Equal(t, int64(42), page.MaxCursor)
	assert.True(t, bool(page.HasMore))

	err := client.GetJSON(ctx, server.URL+"/garbage", &page)
	assert.Equal(t, errs.ErrorTypeParsing, errs.TypeOf(err))

	err = client.GetJSON(ctx, server.URL+"/forbidden", &page)
	assert.Equal(t, errs.ErrorTypeAuth, errs.TypeOf(err))

	err = client.GetJSON(ctx, server.URL+"/other", &page)
	assert.Equal(t, errs.ErrorTypeServerError, errs.TypeOf(err))
}

func TestGetJSONNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(ClientOptions{UserAgent: "ua", Timeout: time.Second}, logger.NewNopLogger())
	client.http.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(time.Millisecond)

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), url, &out)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
}

func TestFinalURLFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/share/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/user/MS4wLjABAAAA-xyz?from=share", http.StatusFound)
	})
	mux.HandleFunc("/user/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("profile"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	final, err := newTestClient(t).FinalURL(context.Background(), server.URL+"/share/abc/")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/user/MS4wLjABAAAA-xyz?from=share", final)
}

func TestDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("frame"), 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp4" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	client := newTestClient(t)

	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL+"/video.mp4", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.Bytes())

	buf.Reset()
	_, err = client.Download(context.Background(), server.URL+"/missing.mp4", &buf)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeNotFound, errs.TypeOf(err))
	assert.Zero(t, buf.Len())
}

func TestTimeoutSparesSlowDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("first"))
		w.(http.Flusher).Flush()
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("-second"))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{UserAgent: "ua", Timeout: 100 * time.Millisecond}, logger.NewNopLogger())
	client.http.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(time.Millisecond)

	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL+"/video.mp4", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("first-second")), n)

	var out map[string]interface{}
	err = client.GetJSON(context.Background(), server.URL+"/listing", &out)
	assert.Error(t, err, "listing requests stay bounded")
}

func TestPostListURL(t *testing.T) {
	assert.Equal(t,
		"https://www.douyin.com/aweme/v1/web/aweme/post/?aid=6383&sec_user_id=MS4w-abc&count=18&max_cursor=0&cookie_enabled=true&platform=PC&downlink=6.9",
		PostListURL(BaseURL, "MS4w-abc", 0, 0))
	assert.Equal(t,
		"http://127.0.0.1:8080/aweme/v1/web/aweme/post/?aid=6383&sec_user_id=u&count=5&max_cursor=99&cookie_enabled=true&platform=PC&downlink=6.9",
		PostListURL("http://127.0.0.1:8080/", "u", 5, 99))
}
