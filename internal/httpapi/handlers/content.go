package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/rethinkmedia/backend/internal/ai"
	"github.com/rethinkmedia/backend/internal/common"
	"github.com/rethinkmedia/backend/internal/media"
)

// Tones the web client offers. Any other non-empty string is accepted as a
// custom tone.
var DefaultTones = []string{
	"Playful", "Serious", "Bold", "Professional", "Casual",
	"Enthusiastic", "Minimalist", "Luxury", "Tech-savvy", "Friendly",
}

const defaultContentSeconds = 6

type generateContentReq struct {
	Prompt                 string  `json:"prompt" binding:"required"`
	Tone                   string  `json:"tone" binding:"required"`
	MediaStyle             string  `json:"mediaStyle" binding:"required"`
	VoiceStyle             string  `json:"voiceStyle" binding:"required"`
	MediaType              string  `json:"mediaType" binding:"required,oneof=image video"`
	AudioType              string  `json:"audioType" binding:"required,oneof=voice jingle"`
	ContentLengthInSeconds int     `json:"contentLengthInSeconds"`
	ChatID                 *uint64 `json:"chatID"`
}

// GenerateContent is the main orchestrator: validate, generate the copy
// bundle synchronously, resolve the chat, compute the next indices, store
// the text row, dispatch media+audio generation, and answer immediately
// with the predicted indices. The dispatched work is observed by polling.
func (h *Handler) GenerateContent(c *gin.Context) {
	var req generateContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate content", err.Error())
		return
	}
	if req.ContentLengthInSeconds <= 0 {
		req.ContentLengthInSeconds = defaultContentSeconds
	}

	ctx := c.Request.Context()
	content, err := h.Text.GenerateContent(ctx, ai.ContentRequest{
		Prompt:     req.Prompt,
		Tone:       req.Tone,
		MediaStyle: req.MediaStyle,
		VoiceStyle: req.VoiceStyle,
		Seconds:    req.ContentLengthInSeconds,
	})
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate content", err.Error())
		return
	}

	chat, err := h.Svc.ResolveChat(ctx, req.ChatID, content.Headline)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate content", err.Error())
		return
	}

	mediaType := media.Type(req.MediaType)
	var mediaIndex, audioIndex, textIndex int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		mediaIndex, err = h.Svc.NextIndex(gctx, chat.ID, mediaType)
		return
	})
	g.Go(func() (err error) {
		audioIndex, err = h.Svc.NextIndex(gctx, chat.ID, media.TypeAudio)
		return
	})
	g.Go(func() (err error) {
		textIndex, err = h.Svc.NextIndex(gctx, chat.ID, media.TypeText)
		return
	})
	if err := g.Wait(); err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate content", err.Error())
		return
	}

	// Text is already in hand; persist it before answering.
	if err := h.Svc.WriteText(ctx, chat.ID, textIndex, content.Headline, content.Caption); err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate content", err.Error())
		return
	}

	h.dispatch(ctx, media.Task{
		ID:        common.NewULID(),
		ChatID:    chat.ID,
		Type:      mediaType,
		Index:     mediaIndex,
		Prompt:    content.MediaPrompt,
		Generator: req.MediaType,
	})
	h.dispatch(ctx, media.Task{
		ID:        common.NewULID(),
		ChatID:    chat.ID,
		Type:      media.TypeAudio,
		Index:     audioIndex,
		Prompt:    content.AudioPrompt,
		Generator: req.AudioType,
	})

	common.OK(c, gin.H{
		"result":     content,
		"chatId":     chat.ID,
		"mediaIndex": mediaIndex,
		"audioIndex": audioIndex,
	})
}

type regenerateAudioReq struct {
	Prompt    string `json:"prompt" binding:"required"`
	AudioType string `json:"audioType" binding:"required,oneof=voice jingle"`
	ChatID    uint64 `json:"chatID" binding:"required"`
}

func (h *Handler) RegenerateAudio(c *gin.Context) {
	var req regenerateAudioReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate content", err.Error())
		return
	}

	ctx := c.Request.Context()
	audioIndex, err := h.Svc.NextIndex(ctx, req.ChatID, media.TypeAudio)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate content", err.Error())
		return
	}

	h.dispatch(ctx, media.Task{
		ID:        common.NewULID(),
		ChatID:    req.ChatID,
		Type:      media.TypeAudio,
		Index:     audioIndex,
		Prompt:    req.Prompt,
		Generator: req.AudioType,
	})

	common.OK(c, gin.H{
		"result":     true,
		"chatId":     req.ChatID,
		"audioIndex": audioIndex,
	})
}

type regenerateMediaReq struct {
	Prompt    string `json:"prompt" binding:"required"`
	ChatID    uint64 `json:"chatID" binding:"required"`
	MediaType string `json:"mediaType" binding:"required,oneof=image video"`
}

func (h *Handler) RegenerateMedia(c *gin.Context) {
	var req regenerateMediaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate media", err.Error())
		return
	}

	ctx := c.Request.Context()
	mediaType := media.Type(req.MediaType)
	mediaIndex, err := h.Svc.NextIndex(ctx, req.ChatID, mediaType)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate media", err.Error())
		return
	}

	h.dispatch(ctx, media.Task{
		ID:        common.NewULID(),
		ChatID:    req.ChatID,
		Type:      mediaType,
		Index:     mediaIndex,
		Prompt:    req.Prompt,
		Generator: req.MediaType,
	})

	common.OK(c, gin.H{
		"result":     true,
		"chatId":     req.ChatID,
		"mediaIndex": mediaIndex,
		"mediaType":  req.MediaType,
	})
}

type regenerateTextReq struct {
	Prompt string `json:"prompt" binding:"required"`
	ChatID uint64 `json:"chatID" binding:"required"`
}

func (h *Handler) RegenerateText(c *gin.Context) {
	var req regenerateTextReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate text", err.Error())
		return
	}

	ctx := c.Request.Context()
	textIndex, err := h.Svc.NextIndex(ctx, req.ChatID, media.TypeText)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "Failed to generate text", err.Error())
		return
	}

	h.dispatch(ctx, media.Task{
		ID:        common.NewULID(),
		ChatID:    req.ChatID,
		Type:      media.TypeText,
		Index:     textIndex,
		Prompt:    req.Prompt,
		Generator: "text",
	})

	common.OK(c, gin.H{
		"result":    true,
		"chatId":    req.ChatID,
		"textIndex": textIndex,
	})
}

// dispatch hands a task to the background dispatcher. The response has
// already promised the index, so a dispatch failure is logged and the row
// simply never appears — the client's regenerate path covers it.
func (h *Handler) dispatch(ctx context.Context, t media.Task) {
	if err := h.Disp.Dispatch(ctx, t); err != nil {
		h.Log.Error("dispatch generation task",
			"task_id", t.ID, "chat_id", t.ChatID, "type", t.Type, "err", err)
	}
}
