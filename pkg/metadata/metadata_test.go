package metadata

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyscraper/pkg/archive"
	"dyscraper/pkg/douyin"
	"dyscraper/pkg/models"
)

func TestFormatPublishTime(t *testing.T) {
	assert.Equal(t, "20230722120000", FormatPublishTime(1690027200, time.UTC))

	shanghai := time.FixedZone("CST", 8*3600)
	assert.Equal(t, "20230722200000", FormatPublishTime(1690027200, shanghai))
}

func TestFromPost(t *testing.T) {
	raw := json.RawMessage(`{
		"aweme_id": 7259000000000000001,
		"desc": "第1集 | the beginning",
		"create_time": 1690027200,
		"author": {"uid": "88", "nickname": "alice"},
		"video": {"play_addr": {"url_list": ["https://cdn/a.mp4", "https://cdn/b.mp4"]}},
		"statistics": {"comment_count": 1, "digg_count": 2, "collect_count": 3, "share_count": 4}
	}`)
	post, err := douyin.DecodePost(raw)
	require.NoError(t, err)

	layout := archive.Layout{Scheme: "oss", Bucket: "datas-aigc", Namespace: "aigc", Category: "short_play"}
	rec := FromPost(post, layout, time.UTC)

	assert.Equal(t, &models.MediaRecord{
		CreatorUID:   "88",
		Nickname:     "alice",
		PostID:       "7259000000000000001",
		Description:  "第1集 | the beginning",
		PublishTime:  "20230722120000",
		ArchivePath:  "oss://datas-aigc/aigc/short_play/alice/第1集 _ the beginning",
		CommentCount: 1,
		DiggCount:    2,
		CollectCount: 3,
		ShareCount:   4,
		SourceURL:    "https://cdn/a.mp4",
		Status:       models.StatusPending,
	}, rec)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "episode 01", "episode 01"},
		{"separators", "a/b\\c", "a_b_c"},
		{"reserved", `what? "yes" <no>|*:`, "what_ _yes_ _no____"},
		{"newlines", "line one\nline two\t#tag", "line one line two #tag"},
		{"control", "bell\x07ring", "bellring"},
		{"trimmed dots", "  ...hidden.  ", "hidden"},
		{"empty", "   ", "fallback"},
		{"only dots", "..", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in, "fallback"))
		})
	}
}

func TestObjectNameKeepsWholeDescription(t *testing.T) {
	prefix := strings.Repeat("短剧", 40)
	first := ObjectName(prefix+" 第1集", "7001")
	second := ObjectName(prefix+" 第2集", "7002")

	assert.Equal(t, prefix+" 第1集", first)
	assert.NotEqual(t, first, second)
}

func TestObjectNameBoundsVeryLongDescriptions(t *testing.T) {
	long := strings.Repeat("剧", 400)
	a := ObjectName(long+"a", "7001")
	b := ObjectName(long+"b", "7002")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_7001"))
	assert.LessOrEqual(t, len(a), maxObjectNameBytes+len("_7001"))
	assert.True(t, utf8.ValidString(a))
}

func TestLocalFilename(t *testing.T) {
	assert.Equal(t, "episode 01", LocalFilename("episode 01", "7001"))
	assert.Equal(t, "7001", LocalFilename("  ", "7001"))

	prefix := strings.Repeat("短剧", 40)
	first := LocalFilename(prefix+" 第1集", "7001")
	second := LocalFilename(prefix+" 第2集", "7002")
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, "_7001"))
	assert.LessOrEqual(t, len(first+".mp4"), 255)
	assert.True(t, utf8.ValidString(first))
}
