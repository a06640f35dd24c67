package speech

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Partial is one incremental recognition result from the streaming service.
type Partial struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Final      bool    `json:"final"`
}

// IStreamClient is the realtime recognition connection used while a
// listening session is open. One audio frame in, one partial result out.
type IStreamClient interface {
	ProcessAudioFrame(frame []byte, lang string) (*Partial, error)
	IsConnected() bool
	Reconnect() error
	Close()
}

type streamClient struct {
	url  string
	conn *websocket.Conn
	lang string
	mu   sync.Mutex

	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewStreamClient dials the realtime recognition service in the background;
// a failed initial dial is retried on the first frame.
func NewStreamClient(url string) IStreamClient {
	client := &streamClient{
		url:          url,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go func() {
		if err := client.Reconnect(); err != nil {
			log.Printf("Initial connection to recognition stream failed: %v. Will retry on demand.", err)
		}
	}()

	return client
}

func (c *streamClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *streamClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.url == "" {
		return fmt.Errorf("recognition stream URL not configured")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
	})

	c.conn = conn
	c.lang = ""

	go c.keepAlive()
	return nil
}

func (c *streamClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *streamClient) keepAlive() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		conn := c.conn
		if conn == nil {
			c.mu.Unlock()
			return
		}
		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Printf("Ping failed for recognition stream, marking connection as dead: %v", err)
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

// ProcessAudioFrame sends one audio frame and waits for the service's
// partial result. A language change is announced with a control message
// before the frame.
func (c *streamClient) ProcessAudioFrame(frame []byte, lang string) (*Partial, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		if err := c.Reconnect(); err != nil {
			return nil, fmt.Errorf("cannot connect to recognition stream: %w", err)
		}
		c.mu.Lock()
		conn = c.conn
		c.mu.Unlock()
		if conn == nil {
			return nil, fmt.Errorf("recognition stream unavailable")
		}
	}

	c.mu.Lock()
	if lang != c.lang {
		conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		control, _ := json.Marshal(map[string]string{"type": "config", "language": lang})
		if err := conn.WriteMessage(websocket.TextMessage, control); err != nil {
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return nil, fmt.Errorf("error sending language config: %w", err)
		}
		c.lang = lang
	}

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.conn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error sending audio frame: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	c.mu.Unlock()

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.mu.Lock()
		c.conn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error reading recognition result: %w", err)
	}

	c.mu.Lock()
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})
	c.mu.Unlock()

	var result Partial
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling recognition result: %w", err)
	}

	return &result, nil
}
