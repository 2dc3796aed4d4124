package httpapi

import (
	"strings"
	"testing"
	"time"

	"depotrack/backend/internal/domain"
)

func testUser() domain.User {
	return domain.User{
		ID:       "u-test",
		Username: "tester",
		Name:     "Test Person",
		Role:     domain.RoleStoreManager,
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	mgr := NewAuthManager("roundtrip-secret", time.Hour)

	token, expiresAt, err := mgr.Issue(testUser(), domain.RoleStoreManager)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry should be in the future, got %s", expiresAt)
	}

	actor, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actor.UserID != "u-test" {
		t.Fatalf("expected userID u-test, got %s", actor.UserID)
	}
	if actor.Username != "tester" {
		t.Fatalf("expected username tester, got %s", actor.Username)
	}
	if actor.Role != domain.RoleStoreManager || actor.ActiveRole != domain.RoleStoreManager {
		t.Fatalf("unexpected roles: %s / %s", actor.Role, actor.ActiveRole)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	mgr := NewAuthManager("tamper-secret", time.Hour)

	token, _, err := mgr.Issue(testUser(), domain.RoleStoreManager)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := mgr.ParseToken(tampered); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
}

func TestParseRejectsTokenFromDifferentSecret(t *testing.T) {
	issuer := NewAuthManager("secret-one", time.Hour)
	verifier := NewAuthManager("secret-two", time.Hour)

	token, _, err := issuer.Issue(testUser(), domain.RoleStoreManager)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatalf("expected cross-secret token to be rejected")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	// Constructed directly to bypass the TTL floor in NewAuthManager.
	mgr := &AuthManager{secret: []byte("expired-secret"), tokenTTL: -time.Minute}

	token, _, err := mgr.Issue(testUser(), domain.RoleStoreManager)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := mgr.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestIssueCarriesActiveRole(t *testing.T) {
	mgr := NewAuthManager("active-role-secret", time.Hour)

	owner := domain.User{ID: "u-owner", Username: "boss", Role: domain.RoleOwner}
	token, _, err := mgr.Issue(owner, domain.RoleDispatchManager)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	actor, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actor.Role != domain.RoleOwner {
		t.Fatalf("fixed role should stay OWNER, got %s", actor.Role)
	}
	if actor.ActiveRole != domain.RoleDispatchManager {
		t.Fatalf("expected DISPATCH_MANAGER active role, got %s", actor.ActiveRole)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	mgr := NewAuthManager("garbage-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", strings.Repeat("a", 64)} {
		if _, err := mgr.ParseToken(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
