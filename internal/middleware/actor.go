// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
)

// actorKey is the context key for the acting identity.
type actorKey struct{}

// ActorHeader is the request header carrying the acting identity, set by
// the authenticating proxy in front of this service.
const ActorHeader = "X-Actor"

// Actor copies the acting identity from the request header into the
// context. The value is opaque to this service; authentication happens
// upstream.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get(ActorHeader); actor != "" {
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, actor))
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFrom returns the acting identity from the context, or "" if the
// request carried none.
func ActorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// RequireActor rejects requests that carry no acting identity. Applied to
// mutating endpoints so ledger rows always record who acted.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFrom(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing actor identity"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
