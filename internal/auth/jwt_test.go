package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

const ownerID = "3f9d7a52-1c44-4e0b-9f3a-8b2d5e6c7a90"

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("test-secret")

	token, err := v.IssueToken(ownerID, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	got, err := v.OwnerID("Bearer " + token)
	if err != nil {
		t.Fatalf("OwnerID: %v", err)
	}
	if got != ownerID {
		t.Errorf("OwnerID = %q, want %q", got, ownerID)
	}
}

func TestOwnerIDRejects(t *testing.T) {
	v := NewVerifier("test-secret")
	valid, err := v.IssueToken(ownerID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	wrongSecret, err := NewVerifier("other-secret").IssueToken(ownerID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := v.IssueToken(ownerID, -time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	notUUID, err := v.IssueToken("not-a-uuid", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"missing bearer prefix", valid},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + wrongSecret},
		{"expired token", "Bearer " + expired},
		{"subject not a uuid", "Bearer " + notUUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.OwnerID(tt.header); !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestOwnerIDContextRoundtrip(t *testing.T) {
	ctx := WithOwnerID(context.Background(), ownerID)

	got, err := OwnerIDFromContext(ctx)
	if err != nil {
		t.Fatalf("OwnerIDFromContext: %v", err)
	}
	if got != ownerID {
		t.Errorf("got %q, want %q", got, ownerID)
	}

	if _, err := OwnerIDFromContext(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("bare context err = %v, want ErrUnauthenticated", err)
	}
}
