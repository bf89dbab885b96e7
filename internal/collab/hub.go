package collab

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/spiritlab/spirit/internal/auth"
	"github.com/spiritlab/spirit/internal/store"
)

// Hub accepts websocket connections and dispatches their commands onto
// the router: document lifecycle (load, update, save, close, create),
// index refresh requests, and the login handshake when credentials are
// configured.
type Hub struct {
	router *Router
	st     *store.Store
	auth   *auth.Auth
	log    *slog.Logger

	// clientConf is pushed to every client right after the upgrade so
	// the editor can configure itself (macros and the like).
	clientConf map[string]any

	// onReindex is called after a document is created and on explicit
	// reindex requests.
	onReindex func()

	upgrader websocket.Upgrader
}

func NewHub(router *Router, st *store.Store, a *auth.Auth, clientConf map[string]any, onReindex func(), log *slog.Logger) *Hub {
	return &Hub{
		router:     router,
		st:         st,
		auth:       a,
		log:        log,
		clientConf: clientConf,
		onReindex:  onReindex,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and runs the connection until it drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := newClientHandler(conn, h.log)
	c.log.Info("client connected", "remote", r.RemoteAddr)

	go c.writePump()
	c.sendConfig(h.clientConf)

	c.readPump(h.handle)

	h.router.Del(c)
	close(c.send)
	c.log.Info("client disconnected")
}

func (h *Hub) handle(c *ClientHandler, env Envelope) {
	// When accounts are configured, everything except the login
	// handshake requires an authenticated connection.
	if h.auth.Enabled() && !c.authed {
		switch env.Cmd {
		case "login", "auth":
		default:
			c.log.Warn("unauthenticated command dropped", "cmd", env.Cmd)
			return
		}
	}

	switch env.Cmd {
	case "load":
		h.load(c, env.Data)
	case "update":
		h.update(c, env)
	case "save":
		h.router.Save(c)
	case "close":
		h.router.Del(c)
	case "create":
		h.create(c, env.Data)
	case "reindex":
		if h.onReindex != nil {
			h.onReindex()
		}
	case "login":
		h.login(c, env.Data)
	case "auth":
		h.token(c, env.Data)
	case "logout":
		c.authed = false
	case "debug":
		c.log.Info("routing state", "docs", h.router.state())
	default:
		c.log.Warn("unknown command", "cmd", env.Cmd)
	}
}

func (h *Hub) docName(data json.RawMessage) (string, bool) {
	var doc string
	if err := json.Unmarshal(data, &doc); err != nil || doc == "" {
		return "", false
	}
	return doc, true
}

func (h *Hub) load(c *ClientHandler, data json.RawMessage) {
	doc, ok := h.docName(data)
	if !ok {
		c.sendFlash("No document specified")
		return
	}
	fpath, err := h.st.LocalPath(doc)
	if err != nil {
		if errors.Is(err, store.ErrNonLocal) {
			c.sendFlash("Document path must stay inside the storage root: " + doc)
			return
		}
		c.sendFlash("Cannot open document: " + doc)
		return
	}
	if !h.st.Exists(doc) {
		c.sendFlash("Document does not exist: " + doc)
		return
	}
	if err := h.router.Add(fpath, c); err != nil {
		c.log.Error("opening document", "doc", doc, "error", err)
		c.sendFlash("Error opening document: " + doc)
	}
}

func (h *Hub) update(c *ClientHandler, env Envelope) {
	cs, err := ParseChangeSet(env.Data)
	if err != nil {
		c.log.Warn("malformed change set", "error", err)
		return
	}
	h.router.Update(c, cs)
}

// create makes a new document seeded with a title derived from its
// filename, refreshes the index, and joins the creator to it. Creating
// a name that already exists just flashes the client.
func (h *Hub) create(c *ClientHandler, data json.RawMessage) {
	doc, ok := h.docName(data)
	if !ok {
		c.sendFlash("No document specified")
		return
	}
	created, err := h.st.Create(doc)
	if err != nil {
		if errors.Is(err, store.ErrNonLocal) {
			c.sendFlash("Document path must stay inside the storage root: " + doc)
			return
		}
		c.log.Error("creating document", "doc", doc, "error", err)
		c.sendFlash("Error creating document: " + doc)
		return
	}
	if !created {
		c.sendFlash("Document already exists: " + doc)
		return
	}
	if h.onReindex != nil {
		h.onReindex()
	}
	fpath, err := h.st.LocalPath(doc)
	if err != nil {
		c.sendFlash("Error opening document: " + doc)
		return
	}
	if err := h.router.Add(fpath, c); err != nil {
		c.log.Error("opening document", "doc", doc, "error", err)
		c.sendFlash("Error opening document: " + doc)
	}
}

func (h *Hub) login(c *ClientHandler, data json.RawMessage) {
	var creds loginData
	if err := json.Unmarshal(data, &creds); err != nil {
		c.sendFlash("Malformed login request")
		return
	}
	if !h.auth.Check(creds.Username, creds.Password) {
		c.log.Warn("login rejected", "username", creds.Username)
		c.sendFlash("Invalid username or password")
		return
	}
	tok, err := h.auth.Token(creds.Username)
	if err != nil {
		c.log.Error("issuing token", "username", creds.Username, "error", err)
		c.sendFlash("Login failed")
		return
	}
	c.authed = true
	c.log.Info("client logged in", "username", creds.Username)
	c.sendToken(creds.Username, tok)
}

func (h *Hub) token(c *ClientHandler, data json.RawMessage) {
	var creds loginData
	if err := json.Unmarshal(data, &creds); err != nil {
		c.sendFlash("Malformed auth request")
		return
	}
	if !h.auth.Verify(creds.Username, creds.Token) {
		c.log.Warn("token rejected", "username", creds.Username)
		c.sendFlash("Session expired, please log in again")
		return
	}
	c.authed = true
	c.log.Info("client authenticated", "username", creds.Username)
}
