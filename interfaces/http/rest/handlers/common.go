// Package handlers maps HTTP requests onto editor commands and queries.
package handlers

import (
	"errors"
	"net/http"

	"grapheditor/application/commands/bus"
	"grapheditor/application/queries"
	querybus "grapheditor/application/queries/bus"
	"grapheditor/application/services"
	"grapheditor/pkg/common"
	pkgerrors "grapheditor/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 16 << 20
)

// base holds what every handler needs
type base struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

func sessionParam(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

// decode reads a JSON body into v. An empty body is accepted.
func (b *base) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(w, r, v, maxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			b.errors.Handle(w, r, err)
		} else {
			b.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		}
		return false
	}
	return true
}

// send dispatches a command and writes the error response when it fails
func (b *base) send(w http.ResponseWriter, r *http.Request, cmd bus.Command) bool {
	if err := b.commandBus.Send(r.Context(), cmd); err != nil {
		b.errors.Handle(w, r, err)
		return false
	}
	return true
}

// respondView answers with the current view of a session
func (b *base) respondView(w http.ResponseWriter, r *http.Request, sessionID string, status int) {
	view, err := querybus.Ask[*services.SessionView](r.Context(), b.queryBus, &queries.GetSessionViewQuery{SessionID: sessionID})
	if err != nil {
		b.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, status, view)
}

// sessionAction builds a handler that decodes the body into a command of
// type C, scopes it to the session in the URL, sends it and answers with
// the resulting session view.
func sessionAction[C any, PC interface {
	*C
	bus.Command
}](b *base, scope func(cmd PC, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := PC(new(C))
		if !b.decode(w, r, cmd) {
			return
		}
		scope(cmd, r)
		if !b.send(w, r, cmd) {
			return
		}
		b.respondView(w, r, sessionParam(r), http.StatusOK)
	}
}
