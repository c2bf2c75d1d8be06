package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
)

const maxBodyBytes = 64 << 10

var errRowNotFound = errors.New("row not found")

type fieldUpdate struct {
	Row   *int   `json:"row,omitempty"`
	Field string `json:"field"`
	Value string `json:"value"`
}

type outcomeResponse struct {
	Status  registration.Status `json:"status"`
	Summary string              `json:"summary,omitempty"`
	Notice  string              `json:"notice,omitempty"`
	Result  registration.Result `json:"result"`
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Acquire(w, r)
	sess.mu.Lock()
	view := render.ViewOf(sess.component)
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSONError(w, badRequest(err))
		return
	}
	var update fieldUpdate
	if err := decodeValidated(raw, s.fieldSchema, &update); err != nil {
		writeJSONError(w, err)
		return
	}

	sess := s.sessions.Acquire(w, r)
	sess.mu.Lock()
	err = applyUpdate(sess.component, update)
	view := render.ViewOf(sess.component)
	sess.mu.Unlock()

	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func applyUpdate(component *registration.Component, update fieldUpdate) error {
	if update.Row == nil {
		field, err := registration.ParseScalarField(update.Field)
		if err != nil {
			return badRequest(err)
		}
		component.Store().SetScalarField(field, update.Value)
		return nil
	}

	field, err := registration.ParseRowField(update.Field)
	if err != nil {
		return badRequest(err)
	}
	row := *update.Row
	if row < 0 || row >= component.Store().Len() {
		return notFound(fmt.Errorf("%w: %d", errRowNotFound, row))
	}
	component.Store().SetRowField(row, field, update.Value)
	return nil
}

func (s *Server) handleAppendRow(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Acquire(w, r)
	sess.mu.Lock()
	sess.component.Editor().AppendRow()
	view := render.ViewOf(sess.component)
	sess.mu.Unlock()
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Acquire(w, r)
	sess.mu.Lock()
	outcome, err := sess.component.Submit(r.Context())
	notice := sess.takeNotice()
	sess.mu.Unlock()

	if err != nil {
		s.logger.Error("submit form", zap.String("session", sess.id), zap.Error(err))
		writeJSONError(w, err)
		return
	}

	resp := outcomeResponse{
		Status:  outcome.Status,
		Summary: outcome.Summary,
		Result:  outcome.Result,
	}
	if outcome.Status == registration.StatusRejected {
		resp.Notice = notice
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
