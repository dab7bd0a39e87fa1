package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		UserID:    1,
		ProfileID: 2,
		SessionID: 3,
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.UserID != 1 {
		t.Errorf("UserID = %d, want 1", got.UserID)
	}
	if got.ProfileID != 2 {
		t.Errorf("ProfileID = %d, want 2", got.ProfileID)
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected no AuthContext in empty context")
	}
}

func TestAccessorsOnEmptyContext(t *testing.T) {
	ctx := context.Background()
	if got := UserID(ctx); got != 0 {
		t.Errorf("UserID = %d, want 0", got)
	}
	if got := ProfileID(ctx); got != 0 {
		t.Errorf("ProfileID = %d, want 0", got)
	}
}
