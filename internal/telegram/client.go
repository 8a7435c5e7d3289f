// Package telegram is the chat transport: it wraps the Bot API client,
// deduplicates redelivered updates, and routes messages, commands, and button
// presses to the domain services.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks API

// Button is one inline keyboard button with an opaque action token.
type Button struct {
	Label string
	Data  string
}

// API is the outbound surface the handler needs from the Bot API client.
type API interface {
	Send(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, buttons []Button) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Client wraps the Bot API client. It satisfies both API and notify.Sender.
type Client struct {
	bot *tgbotapi.BotAPI
}

func NewClient(token string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram client: %w", err)
	}
	return &Client{bot: bot}, nil
}

// Username returns the authenticated bot account name.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

func (c *Client) Send(_ context.Context, chatID int64, text string) error {
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) SendKeyboard(_ context.Context, chatID int64, text string, buttons []Button) error {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("send keyboard to chat %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) AnswerCallback(_ context.Context, callbackID, text string) error {
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// SetWebhook registers url as the update delivery endpoint.
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := c.bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// Updates starts long polling. Used when no webhook URL is configured.
func (c *Client) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	return c.bot.GetUpdatesChan(u)
}

// StopPolling shuts the long-poll loop down.
func (c *Client) StopPolling() {
	c.bot.StopReceivingUpdates()
}
