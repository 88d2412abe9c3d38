package metadata

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"dyscraper/pkg/archive"
	"dyscraper/pkg/douyin"
	"dyscraper/pkg/models"
)

// PublishTimeLayout is the compact local timestamp stored with each post
const PublishTimeLayout = "20060102150405"

// Byte bounds for names derived from descriptions. Local names stay well
// under the common 255 byte file name limit once the post id and
// extension are added; object keys stay under the 1023 byte key limit.
const (
	maxLocalNameBytes  = 160
	maxObjectNameBytes = 768
)

// FormatPublishTime renders epoch seconds as a local YYYYMMDDHHMMSS timestamp
func FormatPublishTime(epoch int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(epoch, 0).In(loc).Format(PublishTimeLayout)
}

// FromPost converts a video post into a pending MediaRecord
func FromPost(post *douyin.Aweme, layout archive.Layout, loc *time.Location) *models.MediaRecord {
	id := string(post.AwemeID)
	return &models.MediaRecord{
		CreatorUID:   string(post.Author.UID),
		Nickname:     post.Author.Nickname,
		PostID:       id,
		Description:  post.Desc,
		PublishTime:  FormatPublishTime(post.CreateTime, loc),
		ArchivePath:  layout.ArchivePath(post.Author.Nickname, ObjectName(post.Desc, id)),
		CommentCount: post.Statistics.CommentCount,
		DiggCount:    post.Statistics.DiggCount,
		CollectCount: post.Statistics.CollectCount,
		ShareCount:   post.Statistics.ShareCount,
		SourceURL:    post.PlayURL(),
		Status:       models.StatusPending,
	}
}

// SanitizeFilename makes a description usable as a file or object name.
// Path separators, reserved characters and control characters become
// underscores and the result is trimmed. An empty result falls back to
// fallback. The length is not bounded.
func SanitizeFilename(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case strings.ContainsRune(`\/:*?"<>|`, r):
			b.WriteRune('_')
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(strings.TrimSpace(b.String()), ".")
	if out == "" {
		return fallback
	}
	return out
}

// ObjectName is the name a post is archived under: the whole sanitized
// description. Only descriptions too long for an object key are cut, and
// then the post id is appended so distinct posts keep distinct keys.
func ObjectName(desc, postID string) string {
	return bounded(SanitizeFilename(desc, postID), postID, maxObjectNameBytes)
}

// LocalFilename is the working file name of a post, without extension.
// Long descriptions are cut and suffixed with the post id.
func LocalFilename(desc, postID string) string {
	return bounded(SanitizeFilename(desc, postID), postID, maxLocalNameBytes)
}

func bounded(name, postID string, limit int) string {
	if len(name) <= limit {
		return name
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return strings.TrimSpace(name[:cut]) + "_" + postID
}
