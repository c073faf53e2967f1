// Package ws implements the gateway contract over a websocket carrying JSON
// frames. Inbound frames with op "mention" become core.MentionEvent values;
// outbound messages, typing hints and direct messages are written as frames
// through a single write path guarded by a mutex, since the underlying
// connection allows only one concurrent writer.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chatrelay/chatrelay/core"
	"github.com/chatrelay/chatrelay/logging"
)

// Frame is the wire envelope for both directions.
type Frame struct {
	Op        string   `json:"op"`
	ChannelID string   `json:"channel_id,omitempty"`
	GuildID   string   `json:"guild_id,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
	AuthorID  string   `json:"author_id,omitempty"`
	Author    string   `json:"author,omitempty"`
	Bot       bool     `json:"bot,omitempty"`
	Content   string   `json:"content,omitempty"`
	Mentions  []string `json:"mentions,omitempty"`
}

// Frame ops.
const (
	OpMention = "mention"
	OpMessage = "message"
	OpTyping  = "typing"
	OpDM      = "dm"
)

// Options configure the websocket gateway.
type Options struct {
	// Token is sent as a bearer credential during the handshake.
	Token string
	// HandshakeTimeout bounds the dial.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds each outbound frame write.
	WriteTimeout time.Duration
	// EventBuffer sizes the inbound event channel.
	EventBuffer int
	// Logger receives connection lifecycle records.
	Logger logging.Logger
}

// Gateway is a connected websocket gateway client. It implements
// gateway.Source and gateway.Sender.
type Gateway struct {
	conn   *websocket.Conn
	events chan core.MentionEvent

	writeMu      sync.Mutex
	writeTimeout time.Duration

	logger logging.Logger

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the gateway endpoint and starts the read loop.
func Dial(ctx context.Context, url string, optFns ...func(o *Options)) (*Gateway, error) {
	opts := Options{
		HandshakeTimeout: 30 * time.Second,
		WriteTimeout:     30 * time.Second,
		EventBuffer:      64,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout}
	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("gateway dial %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("gateway dial %s: %w", url, err)
	}

	g := &Gateway{
		conn:         conn,
		events:       make(chan core.MentionEvent, opts.EventBuffer),
		writeTimeout: opts.WriteTimeout,
		logger:       opts.Logger,
	}
	go g.readLoop()
	return g, nil
}

// Events implements gateway.Source.
func (g *Gateway) Events() <-chan core.MentionEvent {
	return g.events
}

// Close implements gateway.Source.
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = g.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		g.closeErr = g.conn.Close()
	})
	return g.closeErr
}

// readLoop decodes inbound frames until the connection drops, then closes
// the event channel.
func (g *Gateway) readLoop() {
	defer close(g.events)
	for {
		var frame Frame
		if err := g.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.Error("gateway read failed", "error", err)
			}
			return
		}
		if frame.Op != OpMention {
			g.logger.Debug("ignoring frame", "op", frame.Op)
			continue
		}
		g.events <- core.MentionEvent{
			ChannelID:   frame.ChannelID,
			GuildID:     frame.GuildID,
			AuthorID:    frame.AuthorID,
			AuthorName:  frame.Author,
			AuthorIsBot: frame.Bot,
			Text:        frame.Content,
			Mentions:    frame.Mentions,
			Timestamp:   time.Now().UTC(),
		}
	}
}

// Send implements gateway.Sender. Chunks go out in order over the single
// write path; a failed chunk aborts the remainder.
func (g *Gateway) Send(ctx context.Context, channelID string, chunks []string) error {
	for i, chunk := range chunks {
		frame := Frame{Op: OpMessage, ChannelID: channelID, Content: chunk}
		if err := g.writeFrame(ctx, frame); err != nil {
			return fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// Typing implements gateway.Sender.
func (g *Gateway) Typing(ctx context.Context, channelID string) error {
	return g.writeFrame(ctx, Frame{Op: OpTyping, ChannelID: channelID})
}

// DirectMessage implements gateway.Sender.
func (g *Gateway) DirectMessage(ctx context.Context, userID, text string) error {
	return g.writeFrame(ctx, Frame{Op: OpDM, UserID: userID, Content: text})
}

func (g *Gateway) writeFrame(ctx context.Context, frame Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	deadline := time.Now().Add(g.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := g.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return g.conn.WriteMessage(websocket.TextMessage, payload)
}
