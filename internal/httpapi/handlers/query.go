package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rethinkmedia/backend/internal/common"
	"github.com/rethinkmedia/backend/internal/media"
)

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"message": "pong"})
}

// GetChat returns the chat plus its completed media grouped by kind.
func (h *Handler) GetChat(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	payload, err := h.Svc.ChatViewJSON(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, "chat not found", "")
			return
		}
		common.Fail(c, http.StatusInternalServerError, "failed to load chat", err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// ListMedia returns every row for (chat, type) regardless of status, newest
// index first, for client polling. With ?index=N it returns that single
// row instead (the status probe).
func (h *Handler) ListMedia(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	typ, ok := mediaTypeParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if idxStr := c.Query("index"); idxStr != "" {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, "invalid index", idxStr)
			return
		}
		m, err := h.Svc.GetMedia(ctx, chatID, typ, idx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				common.Fail(c, http.StatusNotFound, "media not found", "")
				return
			}
			common.Fail(c, http.StatusInternalServerError, "failed to load media", err.Error())
			return
		}
		common.OK(c, m)
		return
	}

	rows, err := h.Svc.ListMedia(ctx, chatID, typ)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "failed to load media", err.Error())
		return
	}
	common.OK(c, rows)
}

// LatestMedia returns the newest row for (chat, type) regardless of status.
func (h *Handler) LatestMedia(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	typ, ok := mediaTypeParam(c)
	if !ok {
		return
	}

	m, err := h.Svc.LatestMedia(c.Request.Context(), chatID, typ)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, "media not found", "")
			return
		}
		common.Fail(c, http.StatusInternalServerError, "failed to load media", err.Error())
		return
	}
	common.OK(c, m)
}

func chatIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("chat_id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid chat id", c.Param("chat_id"))
		return 0, false
	}
	return id, true
}

func mediaTypeParam(c *gin.Context) (media.Type, bool) {
	t := c.Param("type")
	if !media.ValidType(t) {
		common.Fail(c, http.StatusBadRequest, "invalid media type", t)
		return "", false
	}
	return media.Type(t), true
}
