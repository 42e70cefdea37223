package media

import "time"

type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
	TypeAudio Type = "audio"
	TypeText  Type = "text"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Chat groups generated media. Its name is set (or overwritten) to the
// most recently generated headline.
type Chat struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(256);index" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Chat) TableName() string { return "rethink_media_chat" }

// Media is one generated artifact. (chat_id, type, index) is unique and is
// the conflict target for every post-generation upsert; two writers that
// raced to the same index overwrite rather than duplicate.
type Media struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID       uint64    `gorm:"not null;uniqueIndex:uniq_media_chat_type_index,priority:1" json:"chatId"`
	Type         Type      `gorm:"type:varchar(16);not null;uniqueIndex:uniq_media_chat_type_index,priority:2" json:"type"`
	Index        int       `gorm:"column:index;not null;uniqueIndex:uniq_media_chat_type_index,priority:3" json:"index"`
	ContentOrURL string    `gorm:"column:content_or_url;type:varchar(512);not null;default:''" json:"content_or_url"`
	Status       Status    `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	Prompt       *string   `gorm:"type:text" json:"prompt,omitempty"`
	ParentID     *uint64   `json:"parentId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Media) TableName() string { return "rethink_media_media" }

// ValidType reports whether s names a stored media kind.
func ValidType(s string) bool {
	switch Type(s) {
	case TypeImage, TypeVideo, TypeAudio, TypeText:
		return true
	}
	return false
}
