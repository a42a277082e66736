package sqlite

import (
	"context"
	"testing"

	"SoberTrack/internal/cli/model"
)

func TestConnections_InsertLookupAndState(t *testing.T) {
	setTempUserEnv(t)
	ctx := context.Background()
	s := openTestStore(t, "conn")

	c := model.SponsorConnection{
		ID:          "conn-1",
		Role:        model.RoleSponsee,
		InviteCode:  "code-abc",
		DisplayName: "",
		State:       model.ConnInvited,
	}
	if err := s.InsertConnection(ctx, c); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// invite_code уникален
	c2 := c
	c2.ID = "conn-2"
	if err := s.InsertConnection(ctx, c2); err == nil {
		t.Fatalf("duplicate invite code must be rejected")
	}

	got, err := s.GetConnectionByCode(ctx, "code-abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "conn-1" || got.State != model.ConnInvited {
		t.Fatalf("unexpected connection: %+v", got)
	}

	if err := s.UpdateConnectionState(ctx, "conn-1", model.ConnEstablished, "Bill W."); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetConnection(ctx, "conn-1")
	if got.State != model.ConnEstablished || got.DisplayName != "Bill W." {
		t.Fatalf("state update not applied: %+v", got)
	}

	list, err := s.ListConnections(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list connections: %v, %d", err, len(list))
	}
}
