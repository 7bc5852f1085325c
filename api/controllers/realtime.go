package controllers

import (
	"net/http"

	"github.com/homechef-app/homechef-backend/api/responses"
	"github.com/homechef-app/homechef-backend/internal/realtime"
	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
	"github.com/homechef-app/homechef-backend/pkg/logger"
)

// StatusChannel is the surface the realtime endpoints need.
type StatusChannel interface {
	State() realtime.State
	Snapshots() *realtime.Snapshots
	Reconnect()
}

// RealtimeStatus reports the channel state and tracked snapshot counts.
func RealtimeStatus(ch StatusChannel, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ch == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "realtime channel unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"state":     ch.State().String(),
			"snapshots": ch.Snapshots().Summarize(),
		})
	}
}

// RealtimeReconnect forces an immediate redial, replacing any pending
// scheduled retry.
func RealtimeReconnect(ch StatusChannel, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ch == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "realtime channel unavailable"))
			return
		}
		ch.Reconnect()
		responses.WriteSuccess(w, map[string]string{"state": ch.State().String()})
	}
}
