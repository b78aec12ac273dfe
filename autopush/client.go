package autopush

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shinosaki/websocket-client-go/websocket"
	"go.uber.org/zap"
)

const (
	MozillaPushService = "wss://push.services.mozilla.com"

	DefaultTimeout = 5 * time.Second

	reconnectAttempts = 3
	reconnectInterval = 2
)

var (
	ErrTimeout = errors.New("autopush: request timeout")
	ErrClosed  = errors.New("autopush: connection closed")
)

type AutoPushClient struct {
	*websocket.WebSocketClient
	logger  *zap.Logger
	timeout time.Duration

	doneOnce         sync.Once
	closeOnce        sync.Once
	done             chan struct{}
	helloChan        chan HelloResponse
	notificationChan chan Notification
	registerChan     chan RegisterResponse
	unregisterChan   chan UnregisterResponse
}

func request[T any](ctx context.Context, c *AutoPushClient, ch chan T, label MessageType, payload any) (res T, err error) {
	if err := c.SendJSON(payload); err != nil {
		return res, fmt.Errorf("autopush: %s request failed: %w", label, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res, nil
	case <-c.done:
		return res, ErrClosed
	case <-ctx.Done():
		return res, ctx.Err()
	case <-timer.C:
		return res, fmt.Errorf("%s: %w", label, ErrTimeout)
	}
}

func unmarshaler[T any](logger *zap.Logger, payload []byte, label MessageType) *T {
	var data T
	if err := json.Unmarshal(payload, &data); err != nil {
		logger.Warn("failed to unmarshal payload", zap.String("type", string(label)), zap.Error(err))
		return nil
	}
	return &data
}

// reply hands a response to a waiting request without blocking the read loop.
func reply[T any](c *AutoPushClient, ch chan T, data *T, label MessageType) {
	if data == nil {
		return
	}
	select {
	case ch <- *data:
	default:
		c.logger.Warn("dropped unexpected response", zap.String("type", string(label)))
	}
}

// Dial connects to the push service, reconnecting on failure.
func (c *AutoPushClient) Dial(url string) error {
	if err := c.Connect(url, reconnectAttempts, reconnectInterval); err != nil {
		return fmt.Errorf("autopush: connect %s: %w", url, err)
	}
	return nil
}

// Hello performs the handshake. An empty uaid asks the server for a new one,
// which should be saved for later sessions.
func (c *AutoPushClient) Hello(ctx context.Context, uaid string, channelIDs []string) (HelloResponse, error) {
	if channelIDs == nil {
		channelIDs = []string{}
	}
	res, err := request(ctx, c, c.helloChan, HELLO, HelloRequest{
		Type:       HELLO,
		UAID:       uaid,
		ChannelIDs: channelIDs,
		UseWebPush: true,
	})
	if err != nil {
		return res, err
	}
	if res.Status != OK {
		return res, fmt.Errorf("autopush: hello: %w", res.Status)
	}
	return res, nil
}

// Register creates a channel bound to the application server's VAPID key
// and returns its push endpoint.
func (c *AutoPushClient) Register(ctx context.Context, channelID string, vapidKey string) (RegisterResponse, error) {
	res, err := request(ctx, c, c.registerChan, REGISTER, RegisterRequest{
		Type:      REGISTER,
		ChannelID: channelID,
		Key:       vapidKey,
	})
	if err != nil {
		return res, err
	}
	if res.Status != OK {
		return res, fmt.Errorf("autopush: register %s: %w", channelID, res.Status)
	}
	return res, nil
}

func (c *AutoPushClient) Unregister(ctx context.Context, channelID string) (UnregisterResponse, error) {
	res, err := request(ctx, c, c.unregisterChan, UNREGISTER, UnregisterRequest{
		Type:      UNREGISTER,
		ChannelID: channelID,
	})
	if err != nil {
		return res, err
	}
	if res.Status != OK {
		return res, fmt.Errorf("autopush: unregister %s: %w", channelID, res.Status)
	}
	return res, nil
}

// NewChannelID returns a random UUIDv4 suitable for Register.
func NewChannelID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("autopush: generate channel id: %w", err)
	}
	return id.String(), nil
}

func (c *AutoPushClient) handleMessage(ws *websocket.WebSocketClient, payload []byte) {
	var message Message
	if err := json.Unmarshal(payload, &message); err != nil {
		c.logger.Warn("failed to unmarshal message", zap.Error(err))
		return
	}

	switch message.Type {
	case PING:
		if err := ws.SendJSON(struct{}{}); err != nil {
			c.logger.Warn("failed to answer ping", zap.Error(err))
		}

	case HELLO:
		reply(c, c.helloChan, unmarshaler[HelloResponse](c.logger, payload, HELLO), HELLO)

	case REGISTER:
		reply(c, c.registerChan, unmarshaler[RegisterResponse](c.logger, payload, REGISTER), REGISTER)

	case UNREGISTER:
		reply(c, c.unregisterChan, unmarshaler[UnregisterResponse](c.logger, payload, UNREGISTER), UNREGISTER)

	case NOTIFICATION:
		data := unmarshaler[Notification](c.logger, payload, NOTIFICATION)
		if data == nil {
			return
		}
		if err := ws.SendJSON(Ack{
			Type: ACK,
			Updates: []AckUpdate{
				{
					ChannelID: data.ChannelID,
					Version:   data.Version,
				},
			},
		}); err != nil {
			c.logger.Warn("failed to ack notification", zap.String("channel_id", data.ChannelID), zap.Error(err))
		}
		c.deliver(*data)

	default:
		c.logger.Debug("unknown message type", zap.String("type", string(message.Type)))
	}
}

// deliver hands n to the consumer. It reports false if the client was
// closed first.
func (c *AutoPushClient) deliver(n Notification) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.notificationChan <- n:
		return true
	case <-c.done:
		return false
	}
}

// Close stops delivering notifications and fails pending requests with
// ErrClosed. The notification channel is closed once the connection is.
func (c *AutoPushClient) Close() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *AutoPushClient) handleClose(ws *websocket.WebSocketClient, isReconnecting bool) {
	if isReconnecting {
		c.logger.Info("connection lost, reconnecting")
		return
	}
	c.logger.Info("connection closed")
	c.Close()
	c.closeOnce.Do(func() { close(c.notificationChan) })
}

// NewAutoPushClient returns the client and the channel on which received
// notifications are delivered. The channel is closed with the connection.
func NewAutoPushClient(logger *zap.Logger) (ap *AutoPushClient, ch <-chan Notification) {
	ap = &AutoPushClient{
		logger:           logger.Named("autopush"),
		timeout:          DefaultTimeout,
		done:             make(chan struct{}),
		helloChan:        make(chan HelloResponse, 1),
		notificationChan: make(chan Notification),
		registerChan:     make(chan RegisterResponse, 1),
		unregisterChan:   make(chan UnregisterResponse, 1),
	}
	ap.WebSocketClient = websocket.NewWebSocketClient(nil, ap.handleClose, ap.handleMessage)

	return ap, ap.notificationChan
}
