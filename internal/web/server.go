package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"git.sr.ht/~jakintosh/todo/internal/domain"
)

type Server struct {
	store        domain.Store
	router       *http.ServeMux
	presentation *Presentation
	logger       *log.Logger
	now          func() time.Time
}

func NewServer(store domain.Store, logger *log.Logger) (*Server, error) {
	pres, err := NewPresentation()
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:        store,
		router:       http.NewServeMux(),
		presentation: pres,
		logger:       logger,
		now:          time.Now,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)
	s.logger.Debug("request", "id", requestID, "method", r.Method, "path", r.URL.Path)
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Page Routes
	s.router.HandleFunc("GET /{$}", s.handleIndex)

	// API/HTMX Routes
	s.router.HandleFunc("GET /tasks", s.handleListTasks)
	s.router.HandleFunc("POST /tasks", s.handleCreateTask)
	s.router.HandleFunc("POST /tasks/reorder", s.handleReorderTasks)
	s.router.HandleFunc("PATCH /tasks/{id}", s.handleUpdateTask)
	s.router.HandleFunc("DELETE /tasks/{id}", s.handleDeleteTask)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	filter := domain.ParseFilter(r.URL.Query().Get("filter"))
	if err := s.presentation.RenderIndex(w, s.pageView(filter)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := domain.ParseFilter(r.URL.Query().Get("filter"))
	if err := s.presentation.RenderTaskList(w, s.listView(filter)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		http.Error(w, "Task text is required", http.StatusBadRequest)
		return
	}
	due, err := domain.NormalizeDueDate(r.FormValue("due_date"))
	if err != nil {
		http.Error(w, "Due date must look like 2006-01-02", http.StatusBadRequest)
		return
	}

	task, _ := s.store.Add(text, due)
	s.logger.Info("task added", "id", task.ID)
	s.respond(w, r)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// unchecked checkboxes are not submitted, so "toggle" marks the intent
	var completed *bool
	if _, ok := r.Form["toggle"]; ok {
		val := r.FormValue("completed") == "true"
		completed = &val
	} else if raw := r.FormValue("completed"); raw != "" {
		val, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "Invalid completed value", http.StatusBadRequest)
			return
		}
		completed = &val
	}

	if text, ok := r.Form["text"]; ok && len(text) > 0 {
		s.store.Edit(id, text[0])
	}
	if completed != nil {
		s.store.ToggleCompleted(id, *completed)
	}

	s.respond(w, r)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	s.store.Delete(id)
	s.respond(w, r)
}

func (s *Server) handleReorderTasks(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dragged, ok := parseID(w, r.FormValue("dragged_id"))
	if !ok {
		return
	}
	target, ok := parseID(w, r.FormValue("target_id"))
	if !ok {
		return
	}

	s.store.Reorder(dragged, target)
	s.respond(w, r)
}

// respond re-renders the whole list for HTMX requests and redirects
// everything else back to the page, keeping the current filter.
func (s *Server) respond(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	filter := requestFilter(r, ctx)

	if !ctx.IsHTMX {
		http.Redirect(w, r, indexURL(filter), http.StatusSeeOther)
		return
	}

	s.logger.Debug("htmx swap", "trigger", ctx.TriggerID, "target", ctx.TargetID, "filter", filter)
	if err := s.presentation.RenderTaskList(w, s.listView(filter)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) pageView(filter domain.Filter) PageView {
	return NewPageView(filter, s.listView(filter))
}

func (s *Server) listView(filter domain.Filter) TaskListView {
	active, completed := s.store.Counts()
	return NewTaskListView(filter, s.store.Filtered(filter), active, completed, s.now())
}

// requestFilter reads the filter from the form, falling back to the
// query of the page HTMX reports the user is on.
func requestFilter(r *http.Request, ctx RequestContext) domain.Filter {
	if raw := r.FormValue("filter"); raw != "" {
		return domain.ParseFilter(raw)
	}
	if u, err := url.Parse(ctx.CurrentURL); err == nil && ctx.CurrentURL != "" {
		return domain.ParseFilter(u.Query().Get("filter"))
	}
	return domain.FilterAll
}

func parseID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func indexURL(filter domain.Filter) string {
	if filter == domain.FilterAll {
		return "/"
	}
	return "/?" + url.Values{"filter": {string(filter)}}.Encode()
}
