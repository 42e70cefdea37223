package media

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateChat(ctx context.Context, name string) (*Chat, error) {
	c := &Chat{Name: name}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repo) GetChat(ctx context.Context, id uint64) (*Chat, error) {
	var c Chat
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) RenameChat(ctx context.Context, id uint64, name string) error {
	return r.db.WithContext(ctx).Model(&Chat{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// LastIndex returns the highest index stored for (chatID, typ), or 0 when
// none exists. There is no lock between this read and the subsequent
// insert; concurrent callers can observe the same value and the unique
// index turns the second write into an overwrite.
func (r *Repo) LastIndex(ctx context.Context, chatID uint64, typ Type) (int, error) {
	var m Media
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND type = ?", chatID, typ).
		Order("\"index\" DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return m.Index, nil
}

func (r *Repo) NextIndex(ctx context.Context, chatID uint64, typ Type) (int, error) {
	last, err := r.LastIndex(ctx, chatID, typ)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// Upsert inserts m, or on a (chat_id, type, index) conflict updates the
// lifecycle columns of the existing row.
func (r *Repo) Upsert(ctx context.Context, m *Media) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "chat_id"}, {Name: "type"}, {Name: "index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "content_or_url", "prompt", "updated_at",
		}),
	}).Create(m).Error
}

// ListMedia returns every row for (chatID, typ) regardless of status,
// newest index first, for client polling.
func (r *Repo) ListMedia(ctx context.Context, chatID uint64, typ Type) ([]Media, error) {
	var rows []Media
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND type = ?", chatID, typ).
		Order("\"index\" DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repo) LatestMedia(ctx context.Context, chatID uint64, typ Type) (*Media, error) {
	var m Media
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND type = ?", chatID, typ).
		Order("\"index\" DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) GetMedia(ctx context.Context, chatID uint64, typ Type, index int) (*Media, error) {
	var m Media
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND type = ? AND \"index\" = ?", chatID, typ, index).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListCompleted returns every completed row for a chat, newest first.
func (r *Repo) ListCompleted(ctx context.Context, chatID uint64) ([]Media, error) {
	var rows []Media
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND status = ?", chatID, StatusCompleted).
		Order("\"index\" DESC").
		Find(&rows).Error
	return rows, err
}
