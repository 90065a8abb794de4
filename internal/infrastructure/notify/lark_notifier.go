package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/ledgerline/docflow/internal/application/port"
	"github.com/ledgerline/docflow/internal/domain/entity"
)

// Config holds Lark notifier configuration. ChatID is the group chat
// that receives status-change messages.
type Config struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// LarkNotifier implements port.Notifier over the Lark messaging API.
// Delivery is best effort; the transition engine records failures as
// warnings.
type LarkNotifier struct {
	client *lark.Client
	chatID string
	logger *zap.Logger
}

// NewLarkNotifier creates a notifier posting to a fixed group chat
func NewLarkNotifier(cfg Config, logger *zap.Logger) *LarkNotifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &LarkNotifier{
		client: client,
		chatID: cfg.ChatID,
		logger: logger,
	}
}

// NotifyStatusChanged posts a text message describing the transition
func (n *LarkNotifier) NotifyStatusChanged(ctx context.Context, doc *entity.Document, fromStatus, toStatus, actorID string) error {
	text := fmt.Sprintf("Document %s (%s) moved from %s to %s by %s",
		doc.Number, doc.TypeCode, fromStatus, toStatus, actorID)

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to build message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("document", doc.Number), zap.Error(err))
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if !resp.Success() {
		n.logger.Error("Notification API returned failure",
			zap.String("document", doc.Number),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("notification API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Notification sent",
		zap.String("document", doc.Number),
		zap.String("to", toStatus))
	return nil
}

// Verify interface compliance
var _ port.Notifier = (*LarkNotifier)(nil)
