package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hyperborea-go/hyperborea/internal/logger"
	"github.com/hyperborea-go/hyperborea/restapi"
)

// Routes builds the node's HTTP handler: GET /api/v1/info, /clients,
// /servers, and POST /api/v1/connect, /lookup, /send, /poll,
// /announce. Every route answers 200 OK, with success or failure
// carried in the envelope's status field, per the protocol's wire
// convention; the one exception is GET /info, which answers 500 when
// building its signed response fails.
func (n *Node) Routes() http.Handler {
	n.routesOnce.Do(func() {
		mux := http.NewServeMux()

		mux.HandleFunc("GET /api/v1/info", n.serveInfo)
		mux.HandleFunc("GET /api/v1/clients", n.serveClients)
		mux.HandleFunc("GET /api/v1/servers", n.serveServers)
		mux.HandleFunc("POST /api/v1/connect", servePost(n, "connect", n.HandleConnect))
		mux.HandleFunc("POST /api/v1/lookup", servePost(n, "lookup", n.HandleLookup))
		mux.HandleFunc("POST /api/v1/send", servePost(n, "send", n.HandleSend))
		mux.HandleFunc("POST /api/v1/poll", servePost(n, "poll", n.HandlePoll))
		mux.HandleFunc("POST /api/v1/announce", servePost(n, "announce", n.HandleAnnounce))

		n.routes = mux
	})
	return n.routes
}

func (n *Node) serveInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp, err := n.HandleInfo()
	if err != nil {
		n.log.Error("info handler failed", logger.Error(err))
		n.observe("info", "error", start)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	n.observe("info", "success", start)
	writeJSON(w, resp)
}

func (n *Node) serveClients(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	writeJSON(w, n.HandleClients())
	n.observe("clients", "success", start)
}

func (n *Node) serveServers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	writeJSON(w, n.HandleServers())
	n.observe("servers", "success", start)
}

// servePost adapts a typed Request[In]->Response[Out] handler into an
// http.HandlerFunc: decode, validate the envelope, dispatch, encode.
func servePost[In any, Out any](n *Node, operation string, handle func(restapi.Request[In]) restapi.Response[Out]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req restapi.Request[In]
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			n.observe(operation, "invalid_structure", start)
			writeJSON(w, restapi.NewErrorResponse[Out](restapi.StatusInvalidRequestStructure, err.Error()))
			return
		}

		if err := req.Validate(); err != nil {
			n.observe(operation, "validation_failed", start)
			writeJSON(w, restapi.NewErrorResponse[Out](restapi.StatusRequestValidationFailed, err.Error()))
			return
		}

		resp := handle(req)
		n.observe(operation, statusLabel(resp.Status), start)
		writeJSON(w, resp)
	}
}

func statusLabel(status restapi.Status) string {
	if status.IsSuccess() {
		return "success"
	}
	return status.String()
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
