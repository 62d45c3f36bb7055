package ws

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// handleMessage processes an incoming frame and routes quote events to
// subscribers
func (c *Client) handleMessage(data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.logger.Warn("failed to unmarshal ws message", zap.Error(err))
		return
	}

	switch f.Type {
	case framePing:
		if err := c.send(frame{Type: framePong, Time: f.Time}); err != nil {
			c.logger.Warn("websocket pong error", zap.Error(err))
		}
	case frameSubscribed, frameUnsubbed:
		c.logger.Debug("websocket "+f.Type, zap.String("channel", f.Channel))
	case frameError:
		c.logger.Warn("websocket error frame", zap.ByteString("content", f.Content))
	case frameQuoteEvent:
		c.handleQuoteEvent(f)
	default:
		c.logger.Debug("websocket unknown frame", zap.String("type", f.Type))
	}
}

func (c *Client) handleQuoteEvent(f frame) {
	channel := f.Channel
	prefix, _, _ := strings.Cut(channel, ".")

	switch prefix {
	case "ticker":
		decodeAndRoute[Ticker](c, channel, f.Content)
	case "kline":
		decodeAndRoute[Kline](c, channel, f.Content)
	case "depth":
		decodeAndRoute[Depth](c, channel, f.Content)
	case "trades":
		decodeAndRoute[Trade](c, channel, f.Content)
	default:
		c.logger.Debug("websocket unknown channel", zap.String("channel", channel))
	}
}

func decodeAndRoute[T any](c *Client, channel string, content json.RawMessage) {
	var msg Event[T]
	if err := json.Unmarshal(content, &msg); err != nil {
		c.logger.Warn("failed to unmarshal quote event",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return
	}

	routeMessage(c, channel, msg)
}

// routeMessage fans msg out to every subscription on channel. A full
// subscriber buffer drops the event.
func routeMessage[T any](c *Client, channel string, msg T) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	subscriptions := c.activeSubscriptions[channel]
	if len(subscriptions) == 0 {
		c.logger.Debug("websocket message from unexpected subscription", zap.String("channel", channel))
		return
	}

	for _, sub := range subscriptions {
		ch, ok := sub.internalChan.(chan T)
		if !ok {
			c.logger.Error("subscription channel has wrong type",
				zap.String("channel", channel),
				zap.Int64("id", sub.id),
			)
			continue
		}

		select {
		case ch <- msg:
		default:
			c.logger.Warn("subscriber is not keeping up, dropping event",
				zap.String("channel", channel),
				zap.Int64("id", sub.id),
			)
		}
	}
}
