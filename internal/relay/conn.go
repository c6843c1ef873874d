package relay

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// conn is one websocket client. Writes are serialized; at most one
// subscription polling loop is active per connection at a time.
type conn struct {
	server *Server
	ws     *websocket.Conn

	writeMu sync.Mutex

	subMu sync.Mutex
	sub   *subscription
}

// subscription identifies one polling loop so a failing loop can remove
// itself without touching a newer one.
type subscription struct {
	cancel context.CancelFunc
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &conn{server: s, ws: ws}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	defer c.unsubscribe()
	defer ws.Close()

	// Server shutdown closes the socket, which unblocks the read loop.
	go func() {
		<-ctx.Done()
		ws.Close()
	}()

	// Read loop: one-shot operations run here, uncorrelated with any
	// polling loop.
	for {
		var frame ClientFrame
		if err := ws.ReadJSON(&frame); err != nil {
			return
		}
		c.handle(ctx, frame)
	}
}

func (c *conn) handle(ctx context.Context, frame ClientFrame) {
	m := c.server.mux
	switch frame.Action {
	case ActionSubscribe:
		c.subscribe(ctx, frame.Session)
	case ActionUnsubscribe:
		c.unsubscribe()
	case ActionExec:
		if err := m.SendKeys(frame.Session, frame.Command, true); err != nil {
			c.writeError(frame.Session, err)
			return
		}
		c.write(ServerFrame{Type: FrameExecResult, Session: frame.Session})
	case ActionSendKeys:
		if err := m.SendKeys(frame.Session, frame.Keys, false); err != nil {
			c.writeError(frame.Session, err)
			return
		}
		c.write(ServerFrame{Type: FrameExecResult, Session: frame.Session})
	case ActionCapture:
		out, err := m.CapturePane(frame.Session, frame.Lines)
		if err != nil {
			c.writeError(frame.Session, err)
			return
		}
		c.write(ServerFrame{Type: FrameCaptureResult, Session: frame.Session, Output: out})
	case ActionList:
		infos, err := m.ListSessions()
		if err != nil {
			c.writeError("", err)
			return
		}
		c.write(ServerFrame{Type: FrameSessionList, Sessions: sessionEntries(infos)})
	case ActionCreate:
		if err := m.CreateSession(frame.Session, ""); err != nil {
			c.writeError(frame.Session, err)
			return
		}
		c.write(ServerFrame{Type: FrameSessionCreated, Session: frame.Session})
	case ActionKill:
		if err := m.KillSession(frame.Session); err != nil {
			c.writeError(frame.Session, err)
			return
		}
		c.write(ServerFrame{Type: FrameSessionKilled, Session: frame.Session})
	default:
		c.write(ServerFrame{Type: FrameError, Error: "unknown action: " + frame.Action})
	}
}

// subscribe starts an independent polling loop for this connection. A second
// subscribe replaces the first: the old loop is cancelled before the new one
// starts. Other connections' loops are never touched.
func (c *conn) subscribe(parent context.Context, session string) {
	if session == "" {
		c.write(ServerFrame{Type: FrameError, Error: "session is required"})
		return
	}
	if !c.server.mux.SessionExists(session) {
		c.write(ServerFrame{Type: FrameError, Session: session, Error: "no such session: " + session})
		return
	}

	c.unsubscribe()

	ctx, cancel := context.WithCancel(parent)
	sub := &subscription{cancel: cancel}
	c.subMu.Lock()
	c.sub = sub
	c.subMu.Unlock()

	c.write(ServerFrame{Type: FrameSubscribed, Session: session})

	poller := &Poller{
		Interval: c.server.interval,
		Capture: func() (string, error) {
			return c.server.mux.CapturePane(session, c.server.lines)
		},
		Push: func(sample string) error {
			return c.write(ServerFrame{Type: FrameOutput, Session: session, Output: sample})
		},
		Fail: func(err error) {
			// The error frame goes to this client only; the loop then
			// removes its own subscription.
			c.writeError(session, err)
			c.dropSubscription(sub)
		},
	}

	c.server.loops.Add(1)
	go func() {
		defer c.server.loops.Done()
		poller.Run(ctx)
	}()
}

// unsubscribe cancels the active polling loop, if any.
func (c *conn) unsubscribe() {
	c.subMu.Lock()
	sub := c.sub
	c.sub = nil
	c.subMu.Unlock()
	if sub != nil {
		sub.cancel()
	}
}

// dropSubscription clears the subscription only if it still belongs to the
// failing loop; a newer subscription is left alone.
func (c *conn) dropSubscription(sub *subscription) {
	c.subMu.Lock()
	if c.sub == sub {
		c.sub = nil
	}
	c.subMu.Unlock()
	sub.cancel()
}

func (c *conn) write(frame ServerFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(frame)
}

func (c *conn) writeError(session string, err error) {
	c.write(ServerFrame{Type: FrameError, Session: session, Error: err.Error()})
}
