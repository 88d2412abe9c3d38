package models

import "time"

// Status is the lifecycle state of a recorded post
type Status int

const (
	// StatusPending means the post is recorded but its media is not archived yet
	StatusPending Status = 0
	// StatusDone means the media was uploaded to object storage
	StatusDone Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// MediaRecord is one video post known to the archive. PostID is unique so
// every post is recorded at most once.
type MediaRecord struct {
	ID           uint   `gorm:"primaryKey"`
	CreatorUID   string `gorm:"size:64;not null"`
	Nickname     string `gorm:"size:255;index;not null"`
	PostID       string `gorm:"size:64;uniqueIndex;not null"`
	Description  string `gorm:"type:text"`
	PublishTime  string `gorm:"size:14"`
	ArchivePath  string `gorm:"type:text"`
	CommentCount int64
	DiggCount    int64
	CollectCount int64
	ShareCount   int64
	SourceURL    string `gorm:"type:text"`
	Status       Status `gorm:"index;not null;default:0"`
	CreatedAt    time.Time
}

// TableName overrides the table name
func (MediaRecord) TableName() string {
	return "media_posts"
}

// WorkItem is the projection of a pending record consumed by the fetcher
type WorkItem struct {
	Description string
	SourceURL   string
	Nickname    string
	PostID      string
}

// Creator is one worklist entry
type Creator struct {
	Name       string
	ProfileURL string
}
