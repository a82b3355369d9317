package telegram

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling answers the chat when fn fails or panics. Errors built
// with reply are shown as is; anything else is logged and replaced by
// the message matching its kind.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			if err != nil {
				h.reportError(chatID, err)
			}
			err = nil
		}()
		return fn(ctx, chatID)
	}
}

func (h *Handler) reportError(chatID int64, err error) {
	var uerr *userError
	if errors.As(err, &uerr) {
		h.sendText(chatID, uerr.message)
		return
	}
	h.logger.Error("handle update",
		zap.Int64("chat_id", chatID),
		zap.Error(err),
	)
	h.sendText(chatID, userMessage(err))
}
