package line

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/janseva-labs/janseva-bot-go/internal/ctxutil"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/metrics"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// platformName tags profiles created through this transport.
const platformName = "line"

// MessageHandler is the bot core surface the transport needs.
type MessageHandler interface {
	HandleText(ctx context.Context, userID, platform, text string, caps model.Capabilities) []model.OutgoingMessage
	HandleFollow(ctx context.Context, userID, platform string) []model.OutgoingMessage
}

// Handler handles LINE webhook requests.
type Handler struct {
	channelSecret string
	client        *messaging_api.MessagingApiAPI
	processor     MessageHandler
	metrics       *metrics.Metrics
	log           *logger.Logger
	wg            sync.WaitGroup
}

// NewHandler creates the webhook handler.
func NewHandler(channelSecret, channelToken string, processor MessageHandler, m *metrics.Metrics, log *logger.Logger) (*Handler, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}

	return &Handler{
		channelSecret: channelSecret,
		client:        client,
		processor:     processor,
		metrics:       m,
		log:           log.WithModule("transport.line"),
	}, nil
}

// Handle is the Gin handler for the webhook endpoint. It acknowledges the
// request immediately and processes events asynchronously, as the LINE
// platform requires a fast 200.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.log.Warn("invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.log.WithError(err).Error("failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)

	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				h.log.WithField("panic", r).Error("panic in async event processing")
			}
		}()

		ctx := ctxutil.WithRequestID(context.Background(), uuid.NewString())
		for _, event := range events {
			h.processEvent(ctx, event)
		}
	}()
}

func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface) {
	start := time.Now()

	var (
		eventType  string
		userID     string
		replyToken string
		messages   []model.OutgoingMessage
	)

	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType = "message"
		userID = sourceUserID(e.Source)
		replyToken = e.ReplyToken

		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok || userID == "" {
			h.metrics.RecordWebhook(eventType, "skipped", time.Since(start))
			return
		}
		messages = h.processor.HandleText(ctx, userID, platformName, text.Text, capabilities)

	case webhook.FollowEvent:
		eventType = "follow"
		userID = sourceUserID(e.Source)
		replyToken = e.ReplyToken
		if userID == "" {
			h.metrics.RecordWebhook(eventType, "skipped", time.Since(start))
			return
		}
		messages = h.processor.HandleFollow(ctx, userID, platformName)

	default:
		h.log.WithField("event_type", fmt.Sprintf("%T", e)).Debug("unsupported event type")
		return
	}

	if len(messages) == 0 {
		h.metrics.RecordWebhook(eventType, "no_reply", time.Since(start))
		return
	}

	status := "success"
	if err := h.deliver(userID, replyToken, toLineMessages(messages)); err != nil {
		status = "reply_error"
		h.log.WithUser(userID).WithError(err).Error("failed to deliver messages")
	}
	h.metrics.RecordWebhook(eventType, status, time.Since(start))

	h.log.WithUser(userID).
		WithField("event_type", eventType).
		WithField("messages", len(messages)).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("event processed")
}

// deliver sends messages in order: up to the reply limit on the reply
// token, the rest as push. Emission order is preserved.
func (h *Handler) deliver(userID, replyToken string, messages []messaging_api.MessageInterface) error {
	reply, push := splitReplyPush(messages)

	if replyToken != "" {
		if _, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages:   reply,
		}); err != nil {
			return fmt.Errorf("reply failed: %w", err)
		}
	} else {
		push = messages
	}

	if len(push) > 0 {
		if _, err := h.client.PushMessage(&messaging_api.PushMessageRequest{
			To:       userID,
			Messages: push,
		}, uuid.NewString()); err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
	}

	return nil
}

func sourceUserID(source webhook.SourceInterface) string {
	if user, ok := source.(webhook.UserSource); ok {
		return user.UserId
	}
	return ""
}

// Shutdown waits for in-flight event processing, or until the context is
// canceled.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
