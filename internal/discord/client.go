package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/teemow/inboxdigest/internal/delivery"
	"github.com/teemow/inboxdigest/internal/logging"
)

// session is the subset of *discordgo.Session used by Client.
type session interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Close() error
}

// Client delivers messages to one channel.
type Client struct {
	session   session
	channelID string
	logger    *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewClient creates a bot session for token bound to channelID.
func NewClient(token, channelID string, logger *slog.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token cannot be empty")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel ID cannot be empty")
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return newClient(s, channelID, logger), nil
}

func newClient(s session, channelID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		session:   s,
		channelID: channelID,
		logger:    logging.WithService(logger, "discord"),
	}
}

// Check resolves the channel.
func (c *Client) Check(ctx context.Context) error {
	ch, err := c.session.Channel(c.channelID, discordgo.WithContext(ctx))
	if err != nil {
		return c.wrap("check", err)
	}
	c.logger.Info("found channel", slog.String("channel", ch.Name), slog.String("channel_id", ch.ID))
	return nil
}

// Send posts text to the channel.
func (c *Client) Send(ctx context.Context, text string) error {
	if _, err := c.session.ChannelMessageSend(c.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return c.wrap("send", err)
	}
	return nil
}

// Close closes the session once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.logger.Info("closing discord session")
		c.closeErr = c.session.Close()
	})
	return c.closeErr
}

func (c *Client) wrap(op string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("discord %s channel %s: %w: %v", op, c.channelID, delivery.ErrPermission, err)
		case http.StatusNotFound:
			return fmt.Errorf("discord %s channel %s: %w: %v", op, c.channelID, delivery.ErrNotFound, err)
		}
	}
	return fmt.Errorf("discord %s channel %s: %w", op, c.channelID, err)
}
