package ws

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Subscription is a live stream registration. It ends when the context
// passed to Subscribe* is cancelled or Unsubscribe is called.
type Subscription interface {
	Unsubscribe()
	Err() <-chan error
}

type subscription struct {
	cancel  context.CancelFunc
	errChan chan error
}

func (s *subscription) Unsubscribe()      { s.cancel() }
func (s *subscription) Err() <-chan error { return s.errChan }

type channelSubscription struct {
	internalChan any
	id           int64
}

// buffered so a slow subscriber drops events instead of stalling the
// read loop
const subscriberBuffer = 64

// ===== Type-safe subscription methods =====

// SubscribeTicker subscribes to the 24 hour ticker of a contract
func (c *Client) SubscribeTicker(
	ctx context.Context,
	contractID string,
	ch chan<- TickerMessage,
) (Subscription, error) {
	return newWSSubscription(ctx, c, TickerSubscription{ContractID: contractID}, ch)
}

// SubscribeKline subscribes to candles of a contract
func (c *Client) SubscribeKline(
	ctx context.Context,
	contractID string,
	priceType PriceType,
	interval KlineInterval,
	ch chan<- KlineMessage,
) (Subscription, error) {
	return newWSSubscription(
		ctx,
		c,
		KlineSubscription{ContractID: contractID, PriceType: priceType, Interval: interval},
		ch,
	)
}

// SubscribeDepth subscribes to the order book of a contract
func (c *Client) SubscribeDepth(
	ctx context.Context,
	contractID string,
	depth int,
	ch chan<- DepthMessage,
) (Subscription, error) {
	if depth != 15 && depth != 200 {
		return nil, fmt.Errorf("unsupported depth %d, must be 15 or 200", depth)
	}
	return newWSSubscription(ctx, c, DepthSubscription{ContractID: contractID, Depth: depth}, ch)
}

// SubscribeTrades subscribes to public trades of a contract
func (c *Client) SubscribeTrades(
	ctx context.Context,
	contractID string,
	ch chan<- TradesMessage,
) (Subscription, error) {
	return newWSSubscription(ctx, c, TradesSubscription{ContractID: contractID}, ch)
}

// newWSSubscription registers sub, wires it to ctx and returns the handle.
func newWSSubscription[T any](
	ctx context.Context,
	c *Client,
	sub SubscriptionType,
	ch chan<- T,
) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	errChan := make(chan error, 1)
	id := c.nextSubscriptionID()

	if err := subscribe(c, sub, ch, id, subCtx.Done()); err != nil {
		cancel()
		close(errChan)
		return nil, err
	}

	s := &subscription{
		cancel:  cancel,
		errChan: errChan,
	}

	go func() {
		<-subCtx.Done()

		select {
		case errChan <- subCtx.Err():
		default:
		}
		close(errChan)

		unsubscribe[T](c, sub, id)
	}()

	return s, nil
}

func (c *Client) nextSubscriptionID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptionIDCounter++
	return c.subscriptionIDCounter
}

func subscribe[T any](
	c *Client,
	sub SubscriptionType,
	subscriberChan chan<- T,
	id int64,
	done <-chan struct{},
) error {
	channel := sub.channel()
	internalChan := make(chan T, subscriberBuffer)

	c.mu.Lock()
	first := len(c.activeSubscriptions[channel]) == 0
	c.activeSubscriptions[channel] = append(
		c.activeSubscriptions[channel],
		&channelSubscription{
			internalChan: internalChan,
			id:           id,
		},
	)
	c.mu.Unlock()

	c.deliveries.Add(1)
	go func() {
		defer c.deliveries.Done()
		deliveryLoop(internalChan, subscriberChan, done, c.stopChan)
	}()

	if !first {
		return nil
	}

	if err := c.send(frame{Type: frameSubscribe, Channel: channel}); err != nil {
		unsubscribe[T](c, sub, id)
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	c.logger.Debug("subscribed", zap.String("channel", channel), zap.Int64("id", id))
	return nil
}

// deliveryLoop forwards events until the internal channel closes, the
// subscription ends or the client stops, whichever comes first. A
// subscriber that stopped reading does not pin it.
func deliveryLoop[T any](
	internalChan <-chan T,
	subscriberChan chan<- T,
	done <-chan struct{},
	stop <-chan struct{},
) {
	for {
		select {
		case msg, ok := <-internalChan:
			if !ok {
				return
			}
			select {
			case subscriberChan <- msg:
			case <-done:
				return
			case <-stop:
				return
			}
		case <-done:
			return
		case <-stop:
			return
		}
	}
}

// unsubscribe removes a subscription, closes its internal channel and tells
// the server once the last subscriber of a channel is gone.
func unsubscribe[T any](
	c *Client,
	sub SubscriptionType,
	id int64,
) bool {
	channel := sub.channel()

	c.mu.Lock()
	var internalChan chan T
	remaining := make([]*channelSubscription, 0)
	for _, s := range c.activeSubscriptions[channel] {
		if s.id == id {
			internalChan, _ = s.internalChan.(chan T)
			continue
		}
		remaining = append(remaining, s)
	}
	if len(remaining) == 0 {
		delete(c.activeSubscriptions, channel)
	} else {
		c.activeSubscriptions[channel] = remaining
	}
	if internalChan != nil {
		close(internalChan)
	}
	c.mu.Unlock()

	if internalChan != nil && len(remaining) == 0 {
		if err := c.send(frame{Type: frameUnsubscribe, Channel: channel}); err != nil {
			c.logger.Debug("failed to send unsubscribe", zap.String("channel", channel), zap.Error(err))
		}
	}

	return internalChan != nil
}
