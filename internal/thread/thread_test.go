package thread

import (
	"errors"
	"testing"

	"hondana/internal/store"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return New(st)
}

func TestPostRejectsEmptyBody(t *testing.T) {
	e := newEngine(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		if err := e.Post("alice", "Calculus 101", "carol", text); !errors.Is(err, ErrEmptyBody) {
			t.Errorf("Post(%q): expected ErrEmptyBody, got %v", text, err)
		}
	}
	comments, _ := e.Comments("alice", "Calculus 101")
	if len(comments) != 0 {
		t.Errorf("Blank posts must not create a thread, got %v", comments)
	}
}

func TestUnreadGoesToThreadOwnerOnly(t *testing.T) {
	e := newEngine(t)
	if err := e.Post("alice", "Calculus 101", "carol", "まだ売ってますか？"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	notes, err := e.ListUnread("alice")
	if err != nil {
		t.Fatalf("ListUnread failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("Expected one notification for the owner, got %d", len(notes))
	}
	n := notes[0]
	if n.Title != "Calculus 101" || n.Author != "carol" || n.Text != "まだ売ってますか？" {
		t.Errorf("Unexpected notification %+v", n)
	}
	if n.ThreadKey != "alice::Calculus 101" {
		t.Errorf("Unexpected thread key %q", n.ThreadKey)
	}

	// carol is the comment author but not the thread owner.
	notes, _ = e.ListUnread("carol")
	if len(notes) != 0 {
		t.Errorf("Expected no notifications for carol, got %+v", notes)
	}
}

func TestMarkReadClearsUnread(t *testing.T) {
	e := newEngine(t)
	e.Post("alice", "Calculus 101", "carol", "one")
	e.Post("alice", "Calculus 101", "dave", "two")

	if count, _ := e.UnreadCount("alice"); count != 2 {
		t.Fatalf("Expected 2 unread, got %d", count)
	}

	if err := e.MarkRead("alice", "Calculus 101", "alice"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if notes, _ := e.ListUnread("alice"); len(notes) != 0 {
		t.Errorf("Expected zero notifications after MarkRead, got %+v", notes)
	}

	// Idempotent: marking again is harmless.
	if err := e.MarkRead("alice", "Calculus 101", "alice"); err != nil {
		t.Fatalf("Repeated MarkRead failed: %v", err)
	}
	if count, _ := e.UnreadCount("alice"); count != 0 {
		t.Errorf("Expected 0 unread after repeat MarkRead, got %d", count)
	}
}

func TestPartialReadSeesOnlyNewComments(t *testing.T) {
	e := newEngine(t)
	e.Post("alice", "Calculus 101", "carol", "first")
	e.MarkRead("alice", "Calculus 101", "alice")
	e.Post("alice", "Calculus 101", "carol", "second")

	notes, _ := e.ListUnread("alice")
	if len(notes) != 1 || notes[0].Text != "second" {
		t.Errorf("Expected only the new comment unread, got %+v", notes)
	}
}

func TestUnreadSpansThreads(t *testing.T) {
	e := newEngine(t)
	e.Post("alice", "Calculus 101", "carol", "a")
	e.Post("alice", "Linear Algebra", "dave", "b")
	e.Post("bob", "Calculus 101", "carol", "c")

	count, err := e.UnreadCount("alice")
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 unread for alice, got %d", count)
	}
	if count, _ := e.UnreadCount("bob"); count != 1 {
		t.Errorf("Expected 1 unread for bob, got %d", count)
	}
}

func TestDeleteThreadLeavesNoResidue(t *testing.T) {
	e := newEngine(t)
	e.Post("alice", "Calculus 101", "carol", "old comment")

	if err := e.DeleteThread("alice", "Calculus 101"); err != nil {
		t.Fatalf("DeleteThread failed: %v", err)
	}
	if comments, _ := e.Comments("alice", "Calculus 101"); len(comments) != 0 {
		t.Errorf("Expected empty thread after delete, got %v", comments)
	}

	// Posting again starts a fresh thread; nothing survives from before.
	if err := e.Post("alice", "Calculus 101", "dave", "fresh"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	comments, _ := e.Comments("alice", "Calculus 101")
	if len(comments) != 1 || comments[0].Text != "fresh" {
		t.Errorf("Expected a single fresh comment, got %v", comments)
	}

	// Deleting an absent thread is a no-op.
	if err := e.DeleteThread("alice", "nope"); err != nil {
		t.Errorf("Expected silent no-op, got %v", err)
	}
}

func TestReadByOnlyGrows(t *testing.T) {
	e := newEngine(t)
	e.Post("alice", "Calculus 101", "carol", "hello")
	e.MarkRead("alice", "Calculus 101", "alice")
	e.MarkRead("alice", "Calculus 101", "bob")
	e.MarkRead("alice", "Calculus 101", "alice")

	comments, _ := e.Comments("alice", "Calculus 101")
	if len(comments) != 1 {
		t.Fatalf("Expected one comment, got %d", len(comments))
	}
	if got := len(comments[0].ReadBy); got != 2 {
		t.Errorf("Expected read-by set of 2, got %v", comments[0].ReadBy)
	}
	if !comments[0].IsReadBy("alice") || !comments[0].IsReadBy("bob") {
		t.Errorf("Read-by membership lost: %v", comments[0].ReadBy)
	}
}
