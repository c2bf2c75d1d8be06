package server

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
)

const (
	actionAdd    = "add"
	actionSubmit = "submit"
)

var errUnknownAction = errors.New("unknown form action")

func (s *Server) handleFormGet(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Acquire(w, r)

	sess.mu.Lock()
	view := render.ViewOf(sess.component)
	notice := sess.takeNotice()
	sess.mu.Unlock()

	options := render.RenderOptions{
		Labels: s.cfg.Form.Labels,
		Notice: notice,
		Action: "/",
		Theme:  s.theme,
	}
	if view.Status == registration.StatusRejected {
		options.Errors = render.FieldErrors(view.Result, s.cfg.Form.Notice)
		options.FormErrors = render.MergeFormErrors(options.FormErrors, s.cfg.Form.Notice)
	}

	out, err := s.page.Render(r.Context(), view, options)
	if err != nil {
		s.logger.Error("render form", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.page.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// handleFormPost applies the posted values, runs the requested action and
// redirects back to the page. A post rendered with a different row count
// than the session now holds is stale: only name and email are kept and the
// action is dropped, so the visitor lands on the current form.
func (s *Server) handleFormPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	action := strings.TrimSpace(r.PostForm.Get("action"))
	if action != actionAdd && action != actionSubmit {
		http.Error(w, errUnknownAction.Error(), http.StatusBadRequest)
		return
	}

	sess := s.sessions.Acquire(w, r)
	sess.mu.Lock()
	stale := isStalePost(r.PostForm, sess.component.Store().Len())
	applied, ignored := applyPostedFields(sess.component, r.PostForm, !stale)

	var err error
	switch {
	case stale:
		s.logger.Info("stale form post",
			zap.String("session", sess.id),
			zap.String("rows", r.PostForm.Get("rows")),
			zap.Int("current", sess.component.Store().Len()),
		)
	case action == actionAdd:
		sess.component.Editor().AppendRow()
	case action == actionSubmit:
		_, err = sess.component.Submit(r.Context())
	}
	sess.mu.Unlock()

	s.logger.Debug("form post",
		zap.String("session", sess.id),
		zap.String("action", action),
		zap.Bool("stale", stale),
		zap.Int("applied", applied),
		zap.Int("ignored", ignored),
	)
	if err != nil {
		s.logger.Error("submit form", zap.String("session", sess.id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// isStalePost reports whether the hidden row count disagrees with rows.
// Posts without the count are trusted.
func isStalePost(values url.Values, rows int) bool {
	posted := strings.TrimSpace(values.Get("rows"))
	if posted == "" {
		return false
	}
	n, err := strconv.Atoi(posted)
	return err != nil || n != rows
}

// applyPostedFields writes posted values that differ from the current form.
// Row keys look like courses[2][credits]; indices outside the current rows
// and unknown attributes are skipped, as are all row keys when withRows is
// false.
func applyPostedFields(component *registration.Component, values url.Values, withRows bool) (applied, ignored int) {
	form := component.Snapshot()
	store := component.Store()

	if v, ok := values["name"]; ok && len(v) > 0 && v[0] != form.Name {
		store.SetScalarField(registration.FieldName, v[0])
		applied++
	}
	if v, ok := values["email"]; ok && len(v) > 0 && v[0] != form.Email {
		store.SetScalarField(registration.FieldEmail, v[0])
		applied++
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		if strings.HasPrefix(key, "courses[") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		row, field, ok := parseRowKey(key)
		if !withRows || !ok || row < 0 || row >= form.Len() {
			ignored++
			continue
		}
		value := values.Get(key)
		if form.Rows[row].Value(field) == value {
			continue
		}
		store.SetRowField(row, field, value)
		applied++
	}
	return applied, ignored
}

// parseRowKey splits "courses[i][field]".
func parseRowKey(key string) (int, registration.RowField, bool) {
	rest, ok := strings.CutPrefix(key, "courses[")
	if !ok {
		return 0, 0, false
	}
	indexText, rest, ok := strings.Cut(rest, "][")
	if !ok {
		return 0, 0, false
	}
	name, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return 0, 0, false
	}
	index, err := strconv.Atoi(indexText)
	if err != nil {
		return 0, 0, false
	}
	field, err := registration.ParseRowField(name)
	if err != nil {
		return 0, 0, false
	}
	return index, field, true
}
