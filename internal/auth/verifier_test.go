package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func signHS256(t *testing.T, secret, headerJSON, payloadJSON string) string {
	t.Helper()
	enc := base64.RawURLEncoding
	head := enc.EncodeToString([]byte(headerJSON))
	body := enc.EncodeToString([]byte(payloadJSON))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(head + "." + body))
	return head + "." + body + "." + enc.EncodeToString(mac.Sum(nil))
}

func TestVerifyDevMode(t *testing.T) {
	v := NewVerifier("dev", "")
	p, err := v.Verify("ops-team:Operator")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Subject != "ops-team" || p.Role != RoleOperator {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if _, err := v.Verify("no-role"); err == nil {
		t.Fatal("expected error for malformed dev token")
	}
}

func TestVerifyHMAC(t *testing.T) {
	v := NewVerifier("hmac", "topsecret")
	tok := signHS256(t, "topsecret", `{"alg":"HS256","typ":"JWT"}`, `{"sub":"u1","role":"admin"}`)
	p, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Subject != "u1" || !p.IsAdmin() {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestVerifyHMACRejectsBadSignature(t *testing.T) {
	v := NewVerifier("hmac", "topsecret")
	tok := signHS256(t, "wrongsecret", `{"alg":"HS256"}`, `{"sub":"u1","role":"admin"}`)
	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestVerifyHMACRejectsWrongAlg(t *testing.T) {
	v := NewVerifier("hmac", "topsecret")
	tok := signHS256(t, "topsecret", `{"alg":"none"}`, `{"sub":"u1"}`)
	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected alg error")
	}
}

func TestVerifyHMACDefaultsRoleToViewer(t *testing.T) {
	v := NewVerifier("hmac", "topsecret")
	tok := signHS256(t, "topsecret", `{"alg":"HS256"}`, `{"sub":"u2"}`)
	p, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Role != RoleViewer || p.CanWrite() {
		t.Fatalf("expected read-only viewer, got %+v", p)
	}
}
