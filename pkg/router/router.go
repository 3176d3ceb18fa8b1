package router

import (
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// --- Colors for the access log ---
var (
	timeColor     = color.New(color.FgCyan).SprintFunc()
	durationColor = color.New(color.FgBlue).SprintFunc()
)

// Router is a chi mux that keeps track of what was registered and writes a
// coloured access log line per request.
type Router struct {
	mux    chi.Router
	routes map[string]bool // key = METHOD:PATH
}

// New returns a router with request ids, panic recovery and access logging.
func New(middlewares ...func(http.Handler) http.Handler) *Router {
	r := &Router{
		mux:    chi.NewRouter(),
		routes: make(map[string]bool),
	}
	r.mux.Use(middleware.RequestID, middleware.RealIP, AccessLog, middleware.Recoverer)
	r.mux.Use(middlewares...)

	r.mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
	return r
}

// --- Register paths ---
func (r *Router) register(method, path string, handler http.HandlerFunc) {
	r.routes[method+":"+path] = true
	r.mux.Method(method, path, handler)
}

func (r *Router) GET(path string, handler http.HandlerFunc)  { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler http.HandlerFunc) { r.register(http.MethodPost, path, handler) }

// Handle mounts h for every method under pattern.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.routes["*:"+pattern] = true
	r.mux.Handle(pattern, h)
}

// Group registers routes that share extra middleware.
func (r *Router) Group(fn func(g *Router), middlewares ...func(http.Handler) http.Handler) {
	r.mux.Group(func(cr chi.Router) {
		cr.Use(middlewares...)
		fn(&Router{mux: cr, routes: r.routes})
	})
}

// Routes lists the registered METHOD:PATH keys, sorted.
func (r *Router) Routes() []string {
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// AccessLog prints one coloured line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("%s %s %s %s %s",
			timeColor("[", start.Format("2006-01-02 15:04:05"), "]"),
			methodColor(req.Method).Sprint(req.Method),
			req.URL.Path,
			statusColor(status).Sprint(status),
			durationColor("(", time.Since(start), ")"),
		)
	})
}

// --- Color helpers ---
func statusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return color.New(color.FgGreen)
	case code >= 300 && code < 400:
		return color.New(color.FgCyan)
	case code >= 400 && code < 500:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func methodColor(method string) *color.Color {
	switch method {
	case http.MethodGet:
		return color.New(color.FgGreen)
	case http.MethodPost:
		return color.New(color.FgBlue)
	case http.MethodPut, http.MethodPatch:
		return color.New(color.FgYellow)
	case http.MethodDelete:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgCyan)
	}
}
