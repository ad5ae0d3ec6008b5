package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

const (
	// Time allowed to write a message to the node.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the node.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// WSTransport is a duplex connection to the node. Responses are read on a
// separate goroutine, so requests sent over it resolve after BlockchainRPC
// has returned.
type WSTransport struct {
	url     string
	handler *MessageHandler

	wlk  sync.Mutex
	conn *websocket.Conn

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ Transporter = (*WSTransport)(nil)

func DialWebSocket(ctx context.Context, url string, header http.Header, handler *MessageHandler) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, xerrors.Errorf("dialing %s: %w", url, err)
	}

	t := &WSTransport{
		url:     url,
		handler: handler,
		conn:    conn,
		closing: make(chan struct{}),
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	t.wg.Add(2)
	go t.readLoop()
	go t.pingLoop()

	return t, nil
}

func (t *WSTransport) Kind() types.TransportKind {
	return types.TransportWebSocket
}

func (t *WSTransport) Sync() bool {
	return false
}

func (t *WSTransport) Duplex() bool {
	return true
}

func (t *WSTransport) BlockchainRPC(ctx context.Context, req *types.RPCRequest, requirement types.TransportRequirement, debugBroadcast bool) error {
	body, err := json.Marshal(req)
	if err != nil {
		return xerrors.Errorf("encoding request %d: %w", req.ID, err)
	}
	if debugBroadcast {
		log.Infow("broadcast", "transport", t.Kind(), "requirement", requirement, "payload", string(body))
	}

	select {
	case <-t.closing:
		return xerrors.Errorf("sending request %d: connection to %s closed", req.ID, t.url)
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.wlk.Lock()
	defer t.wlk.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = t.conn.SetWriteDeadline(deadline)
	if err := t.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return xerrors.Errorf("sending request %d: %w", req.ID, err)
	}
	return nil
}

func (t *WSTransport) readLoop() {
	defer t.wg.Done()

	for {
		_, msg, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.closing:
			default:
				log.Errorf("reading from %s: %s", t.url, err)
			}
			return
		}
		if err := t.handler.HandleMessage(msg); err != nil {
			log.Warnf("handling message from %s: %s", t.url, err)
		}
	}
}

func (t *WSTransport) pingLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-t.closing:
			return
		case <-ticker.C:
			t.wlk.Lock()
			err := t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			t.wlk.Unlock()
			if err != nil {
				log.Warnf("ping %s: %s", t.url, err)
			}
		}
	}
}

func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closing)

		t.wlk.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		t.wlk.Unlock()

		err = t.conn.Close()
		t.wg.Wait()
	})
	return err
}
