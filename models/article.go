package models

import "time"

// Article represents a single wiki article. The content field carries
// sanitized rich-text markup produced by the editor and is opaque to the
// server.
type Article struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text" json:"content"`
	Author     string    `gorm:"not null" json:"author"`
	Category   string    `gorm:"index" json:"category,omitempty"`
	LastEditor string    `json:"lastEditor,omitempty"`
	// Timestamps are owned by the service layer; GORM's automatic
	// CreatedAt/UpdatedAt tracking must stay out of the way.
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// HistoryAction is the kind of edit recorded in an article's history.
type HistoryAction string

const (
	HistoryActionCreated HistoryAction = "created"
	HistoryActionEdited  HistoryAction = "edited"
)

// HistoryEntry is one immutable record in an article's edit log.
// PreviousTitle is only set on an edit that changed the title.
type HistoryEntry struct {
	Editor        string        `json:"editor"`
	Date          time.Time     `json:"date"`
	Action        HistoryAction `json:"action"`
	Title         string        `json:"title"`
	PreviousTitle string        `json:"previousTitle,omitempty"`
}

// ArticleInput carries the caller-supplied fields for a create or update.
// The author field names the creator on create and the editor on update.
type ArticleInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// UploadResult is returned to the editor after a successful media upload.
type UploadResult struct {
	URL  string `json:"url"`
	Type string `json:"type"` // "image" or "video"
}
