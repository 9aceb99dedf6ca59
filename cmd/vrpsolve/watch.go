package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// wsMessage mirrors the server's event-stream framing.
type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type watchOptions struct {
	url      string
	instance string
	count    int
	timeout  time.Duration
}

func (a *app) newWatchCmd() *cobra.Command {
	o := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow solution events from a running API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if o.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, o.timeout)
				defer cancel()
			}
			return a.runWatch(ctx, cmd.OutOrStdout(), o)
		},
	}
	cmd.Flags().StringVar(&o.url, "url", "ws://localhost:8080/v1/events/ws", "event WebSocket endpoint")
	cmd.Flags().StringVar(&o.instance, "instance", "", "only follow this instance ID")
	cmd.Flags().IntVarP(&o.count, "count", "n", 0, "exit after this many events (0 = until interrupted)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "give up after this long (0 = never)")
	return cmd
}

func (a *app) runWatch(ctx context.Context, out io.Writer, o *watchOptions) error {
	u, err := url.Parse(o.url)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("--url must be ws:// or wss://, got %q", o.url)
	}
	c, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u, err)
	}
	defer func() { _ = c.Close() }()

	// unblock ReadJSON on cancellation
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		return err
	}
	pl, _ := json.Marshal(map[string]string{"instanceId": o.instance})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		return err
	}
	a.log.Info().Str("url", u.String()).Str("instance", o.instance).Msg("subscribed")

	seen := 0
	for {
		var m wsMessage
		if err := c.ReadJSON(&m); err != nil {
			if ctx.Err() != nil {
				if errors.Is(ctx.Err(), context.DeadlineExceeded) && o.count > 0 {
					return fmt.Errorf("timed out after %d of %d events", seen, o.count)
				}
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		switch m.Type {
		case "connection_ack", "pong":
			a.log.Debug().Str("type", m.Type).Msg("ws")
		case "next":
			var evt struct {
				Type string          `json:"type"`
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(m.Payload, &evt); err != nil {
				return fmt.Errorf("bad event payload: %w", err)
			}
			fmt.Fprintf(out, "%s %s\n", evt.Type, evt.Data)
			seen++
			if o.count > 0 && seen >= o.count {
				_ = c.WriteJSON(wsMessage{Type: "complete", ID: "1"})
				return nil
			}
		case "error":
			return fmt.Errorf("server error: %s", m.Payload)
		case "complete":
			return nil
		}
	}
}
