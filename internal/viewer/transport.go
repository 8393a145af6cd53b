package viewer

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/wayfarerhq/mapbridge/config"
	"github.com/wayfarerhq/mapbridge/logger"
)

const (
	sendBufferSize      = 64
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Transport accepts the viewer's WebSocket connection and pumps protocol
// messages between it and the controller. At most one viewer is connected at
// a time; a new connection replaces the previous one.
type Transport struct {
	log            *zap.SugaredLogger
	controller     *Controller
	pingInterval   time.Duration
	writeTimeout   time.Duration
	allowedOrigins []string
	isDevelopment  bool

	mu     sync.Mutex
	sendCh chan Message
	cancel context.CancelFunc
}

// NewTransport creates a transport bound to the controller.
func NewTransport(controller *Controller, serverCfg *config.ServerConfig) *Transport {
	return &Transport{
		log:            logger.GetLogger().Named("viewer_transport"),
		controller:     controller,
		pingInterval:   defaultPingInterval,
		writeTimeout:   defaultWriteTimeout,
		allowedOrigins: serverCfg.AllowedOrigins,
		isDevelopment:  serverCfg.Environment == config.EnvDevelopment,
	}
}

// getAcceptOptions returns WebSocket accept options based on configuration.
// In development, all origins are allowed. In production, only configured
// origins are allowed.
func (t *Transport) getAcceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if t.isDevelopment {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = t.allowedOrigins
	}
	return opts
}

// HandleWebSocket upgrades the request and runs the connection lifecycle
// until either side closes.
func (t *Transport) HandleWebSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, t.getAcceptOptions())
	if err != nil {
		t.log.Errorw("Failed to accept viewer connection", "error", err)
		t.controller.ReportLoadError(c.Writer.Status(), err)
		return
	}
	connID := uuid.NewString()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sendCh := make(chan Message, sendBufferSize)
	t.attach(sendCh, cancel)
	defer t.detach(sendCh)

	t.log.Infow("Viewer connected", "connectionId", connID, "remoteAddr", c.Request.RemoteAddr)

	errCh := make(chan error, 3)
	go func() { errCh <- t.readLoop(ctx, conn) }()
	go func() { errCh <- t.writeLoop(ctx, conn, sendCh) }()
	go func() { errCh <- t.pingLoop(ctx, conn) }()

	err = <-errCh
	if err != nil && !stderrors.Is(err, context.Canceled) &&
		websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
		websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.log.Warnw("Viewer connection error", "connectionId", connID, "error", err)
		t.controller.ReportLoadError(0, err)
	}
	_ = conn.Close(websocket.StatusNormalClosure, "session ended")
}

// attach replaces any previous connection and points the controller's sender
// at the new one.
func (t *Transport) attach(sendCh chan Message, cancel context.CancelFunc) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.sendCh = sendCh
	t.cancel = cancel
	t.mu.Unlock()

	t.controller.AttachSender(SenderFunc(func(msg Message) error {
		t.mu.Lock()
		ch := t.sendCh
		t.mu.Unlock()
		if ch == nil {
			return nil
		}
		select {
		case ch <- msg:
			return nil
		default:
			t.log.Warnw("Viewer send buffer full, dropping message", "type", string(msg.Type))
			return nil
		}
	}))
}

func (t *Transport) detach(sendCh chan Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// Only detach if a newer connection has not already replaced this one.
	if t.sendCh == sendCh {
		t.sendCh = nil
		t.cancel = nil
		t.controller.AttachSender(nil)
	}
}

func (t *Transport) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if err := t.controller.HandleInbound(ctx, data); err != nil {
			t.log.Warnw("Rejected viewer message", "error", err)
		}
	}
}

func (t *Transport) writeLoop(ctx context.Context, conn *websocket.Conn, sendCh <-chan Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-sendCh:
			writeCtx, cancel := context.WithTimeout(ctx, t.writeTimeout)
			err := wsjson.Write(writeCtx, conn, msg)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (t *Transport) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(t.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, t.writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
