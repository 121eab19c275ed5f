package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// AvatarClientInterface defines the avatar bridge client operations.
// This allows for mocking in tests.
type AvatarClientInterface interface {
	// SetSpeed pushes a normalized speed and returns the value the
	// controller confirmed.
	SetSpeed(speed float64) (float64, error)

	// GetSpeed queries the controller for its current normalized speed.
	GetSpeed() (float64, error)

	Close() error
}

// AvatarClient manages WebSocket communication with the avatar controller.
type AvatarClient struct {
	mu          sync.Mutex
	conn        *websocket.Conn
	url         string
	logger      *slog.Logger
	readTimeout time.Duration
}

// NewAvatarClient creates a new bridge client and establishes the initial
// connection.
func NewAvatarClient(wsURL string, logger *slog.Logger, readTimeout int) (*AvatarClient, error) {
	if _, err := url.Parse(wsURL); err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}

	client := &AvatarClient{
		url:         wsURL,
		logger:      logger,
		readTimeout: time.Duration(readTimeout) * time.Millisecond,
	}

	if err := client.connectWithRetry(); err != nil {
		return nil, err
	}

	return client, nil
}

// connect establishes a WebSocket connection to the avatar controller.
func (c *AvatarClient) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("invalid ws url: %w", err)
	}

	d := websocket.Dialer{
		HandshakeTimeout: 2 * time.Second,
	}

	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		return err
	}

	c.conn = conn
	return nil
}

// connectWithRetry attempts to connect with a short retry loop.
func (c *AvatarClient) connectWithRetry() error {
	var lastErr error
	for attempt := 0; attempt < 10; attempt++ {
		err := c.connect()
		if err == nil {
			c.logger.Info("connected to avatar controller", "url", c.url)
			return nil
		}
		lastErr = err
		c.logger.Warn("connection failed; retrying...", "error", err, "attempt", attempt+1)
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("failed to connect after 10 attempts: %w", lastErr)
}

// ensureConnected checks connection and reconnects if necessary.
func (c *AvatarClient) ensureConnected() error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.logger.Warn("connection lost; reconnecting...")
	return c.connectWithRetry()
}

// sendAndRead sends a message and waits for a response.
func (c *AvatarClient) sendAndRead(v any, timeout time.Duration) ([]byte, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, fmt.Errorf("no websocket connection")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.conn = nil // Mark connection as broken
		return nil, err
	}

	c.conn.SetReadDeadline(time.Now().Add(timeout))
	defer c.conn.SetReadDeadline(time.Time{})

	_, message, err := c.conn.ReadMessage()
	if err != nil {
		c.conn = nil // Mark connection as broken
		return nil, err
	}

	return message, nil
}

// Close closes the WebSocket connection.
func (c *AvatarClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return nil
}

// SetSpeed sends a SetSpeed command to the avatar controller and returns the
// speed we asked for.
func (c *AvatarClient) SetSpeed(speed float64) (float64, error) {
	cmd := map[string]any{"SetSpeed": speed}

	response, err := c.sendAndRead(cmd, c.readTimeout)
	if err != nil {
		return 0, fmt.Errorf("set speed: %w", err)
	}

	var setResp struct {
		SetSpeed struct {
			Result string `json:"result"`
		} `json:"SetSpeed"`
	}

	if err := json.Unmarshal(response, &setResp); err != nil {
		c.logger.Warn("failed to parse SetSpeed response", "error", err)
		return speed, nil // Assume success
	}

	c.logger.Debug("SetSpeed", "speed", speed, "result", setResp.SetSpeed.Result)

	return speed, nil
}

// GetSpeed queries the avatar controller for the current normalized speed.
func (c *AvatarClient) GetSpeed() (float64, error) {
	cmd := "GetSpeed"

	response, err := c.sendAndRead(cmd, c.readTimeout)
	if err != nil {
		return 0, fmt.Errorf("get speed: %w", err)
	}

	var speedResp struct {
		GetSpeed struct {
			Result string  `json:"result"`
			Value  float64 `json:"value"`
		} `json:"GetSpeed"`
	}

	if err := json.Unmarshal(response, &speedResp); err != nil {
		c.logger.Warn("failed to parse GetSpeed response", "error", err)
		return 0, err
	}

	c.logger.Debug("GetSpeed", "speed", speedResp.GetSpeed.Value)

	return speedResp.GetSpeed.Value, nil
}
