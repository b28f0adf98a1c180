package healthz

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Handler answers liveness probes unconditionally.  Readiness probes fail
// until SetReady(true), and report render progress once any is recorded.
type Handler struct {
	checkReady bool

	ready     atomic.Bool
	rowsDone  atomic.Int64
	rowsTotal atomic.Int64
}

// New returns a liveness handler.
func New() *Handler {
	return &Handler{}
}

// NewReadiness returns a handler that is unhealthy until marked ready.
func NewReadiness() *Handler {
	return &Handler{checkReady: true}
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// SetProgress has the signature of scene.ProgressFunction.
func (h *Handler) SetProgress(done, total int) {
	h.rowsDone.Store(int64(done))
	h.rowsTotal.Store(int64(total))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.checkReady && !h.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("503 Service Unavailable"))
		return
	}

	w.Write([]byte("200 OK"))
	if total := h.rowsTotal.Load(); total != 0 {
		fmt.Fprintf(w, "\nrows %d/%d", h.rowsDone.Load(), total)
	}
}
