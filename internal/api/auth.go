// Package api implements the HTTP surface of the routing service.
package api

import (
    "net/http"
    "strings"

    "logiroute/internal/auth"
)

// getPrincipal extracts the caller identity.
// - If Authorization: Bearer is present, uses the configured verifier (dev/hmac).
// - Else falls back to headers for dev.
func (s *Server) getPrincipal(r *http.Request) auth.Principal {
    authz := r.Header.Get("Authorization")
    if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
        tok := strings.TrimSpace(authz[len("Bearer "):])
        if pr, err := s.Auth.Verify(tok); err == nil {
            return pr
        }
    }
    sub := r.Header.Get("X-Subject")
    role := r.Header.Get("X-Role")
    if sub == "" {
        sub = "dev"
    }
    if role == "" {
        role = auth.RoleAdmin
    }
    return auth.Principal{Subject: sub, Role: strings.ToLower(role)}
}
