package handlers

import (
	"github.com/rethinkmedia/backend/internal/ai"
	"github.com/rethinkmedia/backend/internal/dispatch"
	"github.com/rethinkmedia/backend/internal/logging"
	"github.com/rethinkmedia/backend/internal/media"
)

type Handler struct {
	Svc  *media.Service
	Text ai.ContentGenerator
	Disp dispatch.Dispatcher
	Log  *logging.Logger
}

func New(svc *media.Service, text ai.ContentGenerator, disp dispatch.Dispatcher, log *logging.Logger) *Handler {
	return &Handler{
		Svc:  svc,
		Text: text,
		Disp: disp,
		Log:  log.With("component", "httpapi"),
	}
}
