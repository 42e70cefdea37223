package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rethinkmedia/backend/internal/ai"
	"github.com/rethinkmedia/backend/internal/logging"
	"github.com/rethinkmedia/backend/internal/store/blob"
	"github.com/rethinkmedia/backend/internal/store/redisstore"
)

// Service owns the media lifecycle: placeholder write, generation, blob
// upload, final upsert. It is the Runner behind both dispatcher backends.
type Service struct {
	repo  *Repo
	gens  *ai.Registry
	blobs blob.Store
	cache *redisstore.Store // nil when redis is not configured
	log   *logging.Logger
}

func NewService(repo *Repo, gens *ai.Registry, blobs blob.Store, cache *redisstore.Store, log *logging.Logger) *Service {
	return &Service{
		repo:  repo,
		gens:  gens,
		blobs: blobs,
		cache: cache,
		log:   log.With("component", "media"),
	}
}

// ResolveChat creates the chat on a first generation request, or reuses and
// renames an existing one. Either way the chat ends up named after the
// generated headline.
func (s *Service) ResolveChat(ctx context.Context, chatID *uint64, headline string) (*Chat, error) {
	if chatID == nil {
		return s.repo.CreateChat(ctx, headline)
	}
	c, err := s.repo.GetChat(ctx, *chatID)
	if err != nil {
		return nil, err
	}
	if headline != "" && headline != c.Name {
		if err := s.repo.RenameChat(ctx, c.ID, headline); err != nil {
			return nil, err
		}
		c.Name = headline
	}
	return c, nil
}

func (s *Service) GetChat(ctx context.Context, id uint64) (*Chat, error) {
	return s.repo.GetChat(ctx, id)
}

func (s *Service) NextIndex(ctx context.Context, chatID uint64, typ Type) (int, error) {
	return s.repo.NextIndex(ctx, chatID, typ)
}

// WriteText stores headline/caption as a completed text row; text is
// generated synchronously so there is no pending phase. A write failure is
// recorded as a failed row before the error is returned.
func (s *Service) WriteText(ctx context.Context, chatID uint64, index int, headline, caption string) error {
	content, err := json.Marshal(map[string]string{
		"headline": headline,
		"caption":  caption,
	})
	if err != nil {
		return err
	}
	row := &Media{
		ChatID:       chatID,
		Type:         TypeText,
		Index:        index,
		ContentOrURL: string(content),
		Status:       StatusCompleted,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		row.Status = StatusFailed
		if ferr := s.repo.Upsert(ctx, row); ferr != nil {
			s.log.Error("failed-row write after text insert failure", "chat_id", chatID, "err", ferr)
		}
		return fmt.Errorf("store text content: %w", err)
	}
	s.invalidate(ctx, chatID)
	return nil
}

// Run executes one detached generation task to completion. Adapter and
// upload failures are converted into a failed row and returned only so the
// dispatcher can log them; they must never crash the caller.
func (s *Service) Run(ctx context.Context, t Task) error {
	// An empty prompt is a no-op: no provider call, no processing row.
	if strings.TrimSpace(t.Prompt) == "" {
		s.log.Warn("skipping task with empty prompt",
			"task_id", t.ID, "chat_id", t.ChatID, "type", t.Type)
		return nil
	}

	if t.Generator == "text" {
		// Regenerated text reuses the prompt for both fields.
		return s.WriteText(ctx, t.ChatID, t.Index, t.Prompt, t.Prompt)
	}

	prompt := t.Prompt
	placeholder := &Media{
		ChatID: t.ChatID,
		Type:   t.Type,
		Index:  t.Index,
		Status: placeholderStatus(t.Generator),
		Prompt: &prompt,
	}
	if err := s.repo.Upsert(ctx, placeholder); err != nil {
		return fmt.Errorf("write placeholder row: %w", err)
	}
	s.invalidate(ctx, t.ChatID)

	url, err := s.generateAndUpload(ctx, t)
	final := &Media{
		ChatID: t.ChatID,
		Type:   t.Type,
		Index:  t.Index,
		Prompt: &prompt,
	}
	if err != nil {
		final.Status = StatusFailed
		final.ContentOrURL = ""
		if uerr := s.repo.Upsert(ctx, final); uerr != nil {
			s.log.Error("failed-row upsert", "task_id", t.ID, "chat_id", t.ChatID, "err", uerr)
		}
		s.invalidate(ctx, t.ChatID)
		return err
	}

	final.Status = StatusCompleted
	final.ContentOrURL = url
	if err := s.repo.Upsert(ctx, final); err != nil {
		return fmt.Errorf("completed-row upsert: %w", err)
	}
	s.invalidate(ctx, t.ChatID)
	return nil
}

func (s *Service) generateAndUpload(ctx context.Context, t Task) (string, error) {
	gen, err := s.gens.Get(t.Generator)
	if err != nil {
		return "", err
	}
	artifact, err := gen.Generate(ctx, t.Prompt)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", t.Generator, err)
	}
	key := fmt.Sprintf("chat-%d-%s-%d.%s", t.ChatID, t.Type, time.Now().UnixMilli(), artifact.Ext)
	url, err := s.blobs.Upload(ctx, key, artifact.ContentType, artifact.Data)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return url, nil
}

// The speech path has historically shown "processing" while other kinds
// sit at "pending"; both mean generation-in-flight to pollers.
func placeholderStatus(generator string) Status {
	if generator == ai.GeneratorVoice {
		return StatusProcessing
	}
	return StatusPending
}

func (s *Service) invalidate(ctx context.Context, chatID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateChat(ctx, chatID); err != nil {
		s.log.Warn("cache invalidation", "chat_id", chatID, "err", err)
	}
}

// ChatView is the polling payload for a whole chat: the chat row plus its
// completed media grouped by kind.
type ChatView struct {
	Chat  *Chat            `json:"chat"`
	Media map[Type][]Media `json:"media"`
}

// ChatViewJSON serves the grouped view, cached when redis is configured.
func (s *Service) ChatViewJSON(ctx context.Context, chatID uint64) ([]byte, error) {
	if s.cache != nil {
		if b, err := s.cache.GetChatView(ctx, chatID); err == nil {
			return b, nil
		} else if err != redisstore.ErrMiss {
			s.log.Warn("cache read", "chat_id", chatID, "err", err)
		}
	}

	c, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListCompleted(ctx, chatID)
	if err != nil {
		return nil, err
	}
	view := ChatView{Chat: c, Media: make(map[Type][]Media)}
	for _, m := range rows {
		view.Media[m.Type] = append(view.Media[m.Type], m)
	}

	b, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetChatView(ctx, chatID, b); err != nil {
			s.log.Warn("cache write", "chat_id", chatID, "err", err)
		}
	}
	return b, nil
}

func (s *Service) ListMedia(ctx context.Context, chatID uint64, typ Type) ([]Media, error) {
	return s.repo.ListMedia(ctx, chatID, typ)
}

func (s *Service) LatestMedia(ctx context.Context, chatID uint64, typ Type) (*Media, error) {
	return s.repo.LatestMedia(ctx, chatID, typ)
}

func (s *Service) GetMedia(ctx context.Context, chatID uint64, typ Type, index int) (*Media, error) {
	return s.repo.GetMedia(ctx, chatID, typ, index)
}
