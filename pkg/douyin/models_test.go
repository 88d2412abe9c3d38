package douyin

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagDecoding(t *testing.T) {
	tests := map[string]bool{
		`0`:       false,
		`1`:       true,
		`true`:    true,
		`false`:   false,
		`null`:    false,
		`"1"`:     true,
		`2`:       true,
		`0.0`:     false,
		`"false"`: false,
	}
	var bad Flag
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &bad))

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			var f Flag
			require.NoError(t, json.Unmarshal([]byte(input), &f))
			assert.Equal(t, want, bool(f))
		})
	}
}

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"7250000000000000001","b":7250000000000000002}`), &v))
	assert.Equal(t, ID("7250000000000000001"), v.A)
	assert.Equal(t, ID("7250000000000000002"), v.B)
}

func TestDecodePostVideo(t *testing.T) {
	raw := json.RawMessage(`{
		"aweme_id": "7001",
		"desc": "hello world",
		"create_time": 1690000000,
		"author": {"uid": "123", "nickname": "alice"},
		"video": {"play_addr": {"url_list": ["https://cdn/a.mp4", "https://cdn/b.mp4"]}},
		"statistics": {"comment_count": 1, "digg_count": 2, "collect_count": 3, "share_count": 4},
		"images": null
	}`)

	post, err := DecodePost(raw)
	require.NoError(t, err)
	assert.False(t, post.IsImageSet())
	assert.Equal(t, "https://cdn/a.mp4", post.PlayURL())
	assert.Equal(t, ID("123"), post.Author.UID)
	assert.Equal(t, int64(4), post.Statistics.ShareCount)
}

func TestDecodePostImageSet(t *testing.T) {
	raw := json.RawMessage(`{
		"aweme_id": "7002",
		"images": [
			{"url_list": ["https://cdn/1-small.jpg", "https://cdn/1-large.jpg"]},
			{"url_list": []},
			{"url_list": ["https://cdn/2.jpg"]}
		]
	}`)

	post, err := DecodePost(raw)
	require.NoError(t, err)
	assert.True(t, post.IsImageSet())
	assert.Equal(t, []string{"https://cdn/1-large.jpg", "https://cdn/2.jpg"}, post.PictureURLs())
}

func TestDecodePostMalformed(t *testing.T) {
	tests := map[string]string{
		"not an object":   `[1,2,3]`,
		"missing id":      `{"video":{"play_addr":{"url_list":["u"]}}}`,
		"missing address": `{"aweme_id":"1","video":{"play_addr":{"url_list":[]}}}`,
		"bad counters":    `{"aweme_id":"1","statistics":{"digg_count":"lots"}}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePost(json.RawMessage(raw))
			assert.Error(t, err)
		})
	}
}
