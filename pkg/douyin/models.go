package douyin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// PostListResponse is one page of the listing API. Posts are kept raw so
// a malformed entry can be skipped without losing the page.
type PostListResponse struct {
	StatusCode int               `json:"status_code"`
	MaxCursor  int64             `json:"max_cursor"`
	HasMore    Flag              `json:"has_more"`
	AwemeList  []json.RawMessage `json:"aweme_list"`
}

// Flag decodes the API's 0/1 integers as well as JSON booleans
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch s := string(bytes.TrimSpace(data)); s {
	case "null", "false", "0", `""`, `"0"`, `"false"`:
		*f = false
	case "true", `"1"`, `"true"`:
		*f = true
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid flag %s", s)
		}
		*f = n != 0
	}
	return nil
}

// ID decodes identifiers sent either as strings or as numbers
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Aweme is a single post
type Aweme struct {
	AwemeID    ID         `json:"aweme_id"`
	Desc       string     `json:"desc"`
	CreateTime int64      `json:"create_time"`
	Author     Author     `json:"author"`
	Video      Video      `json:"video"`
	Statistics Statistics `json:"statistics"`
	Images     []Image    `json:"images"`
}

type Author struct {
	UID      ID     `json:"uid"`
	Nickname string `json:"nickname"`
}

type Video struct {
	PlayAddr URLList `json:"play_addr"`
}

type URLList struct {
	URLList []string `json:"url_list"`
}

type Image struct {
	URLList []string `json:"url_list"`
}

type Statistics struct {
	CommentCount int64 `json:"comment_count"`
	DiggCount    int64 `json:"digg_count"`
	CollectCount int64 `json:"collect_count"`
	ShareCount   int64 `json:"share_count"`
}

// IsImageSet reports whether the post is a picture gallery rather than a video
func (a *Aweme) IsImageSet() bool {
	return len(a.Images) > 0
}

// PlayURL is the first playable address of a video post
func (a *Aweme) PlayURL() string {
	if len(a.Video.PlayAddr.URLList) == 0 {
		return ""
	}
	return a.Video.PlayAddr.URLList[0]
}

// PictureURLs returns the last (highest quality) address of each image
func (a *Aweme) PictureURLs() []string {
	urls := make([]string, 0, len(a.Images))
	for _, img := range a.Images {
		if n := len(img.URLList); n > 0 {
			urls = append(urls, img.URLList[n-1])
		}
	}
	return urls
}

var (
	errMissingID       = errors.New("post has no aweme_id")
	errMissingPlayAddr = errors.New("video post has no play address")
)

// DecodePost decodes and validates one raw listing entry
func DecodePost(raw json.RawMessage) (*Aweme, error) {
	var a Aweme
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	if a.IsImageSet() {
		return &a, nil
	}
	if a.AwemeID == "" {
		return nil, errMissingID
	}
	if a.PlayURL() == "" {
		return nil, errMissingPlayAddr
	}
	return &a, nil
}
