package notificationstore_test

import (
	"errors"
	"testing"

	notificationstore "github.com/vendaops/contratohub/internal/app/store/notifications"
	"github.com/vendaops/contratohub/internal/testutil"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana := fixtures.CreateUser(ctx, "Ana", "operacional", "Salvador", "BA", "Nordeste")
	bia := fixtures.CreateUser(ctx, "Bia", "operacional", "Salvador", "BA", "Nordeste")

	if _, err := store.Create(ctx, ana.ID, "Nova meta atribuída", "/goals"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, bia.ID, "Outra meta", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.ListForUser(ctx, ana.ID, 0)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 notification for ana, got %d", len(got))
	}
	if got[0].Message != "Nova meta atribuída" || got[0].IsRead {
		t.Errorf("notification = %+v", got[0])
	}
}

func TestStore_MarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana := fixtures.CreateUser(ctx, "Ana", "operacional", "Salvador", "BA", "Nordeste")
	bia := fixtures.CreateUser(ctx, "Bia", "operacional", "Salvador", "BA", "Nordeste")
	n := fixtures.CreateNotification(ctx, ana, "Meta atribuída")

	// Another user cannot ack it.
	if err := store.MarkRead(ctx, n.ID, bia.ID); !errors.Is(err, notificationstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong user, got %v", err)
	}

	if err := store.MarkRead(ctx, n.ID, ana.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	count, err := store.UnreadCount(ctx, ana.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("unread count = %d, want 0", count)
	}
}

func TestStore_MarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana := fixtures.CreateUser(ctx, "Ana", "operacional", "Salvador", "BA", "Nordeste")
	fixtures.CreateNotification(ctx, ana, "Um")
	fixtures.CreateNotification(ctx, ana, "Dois")
	fixtures.CreateNotification(ctx, ana, "Três")

	n, err := store.MarkAllRead(ctx, ana.ID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if n != 3 {
		t.Errorf("modified = %d, want 3", n)
	}

	count, err := store.UnreadCount(ctx, ana.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("unread count = %d, want 0", count)
	}
}
