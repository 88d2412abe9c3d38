package douyin

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the web origin of the listing API
	BaseURL = "https://www.douyin.com"

	// PostListEndpoint lists a creator's posts, newest first
	PostListEndpoint = "/aweme/v1/web/aweme/post/"

	// DefaultPageSize is the page size the web client requests
	DefaultPageSize = 18
)

// PostListURL builds the unsigned listing URL. Parameter order matters:
// the signature is computed over the exact string.
func PostListURL(baseURL, secUID string, count int, cursor int64) string {
	if count <= 0 {
		count = DefaultPageSize
	}
	return fmt.Sprintf(
		"%s%s?aid=6383&sec_user_id=%s&count=%d&max_cursor=%d&cookie_enabled=true&platform=PC&downlink=6.9",
		strings.TrimRight(baseURL, "/"), PostListEndpoint, url.QueryEscape(secUID), count, cursor,
	)
}
