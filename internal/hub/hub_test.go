package hub

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/fakeartist/backend/internal/room"
)

func TestHub_Create_Get_SamePointer(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop(), nil)
	reply := make(chan *room.Room, 1)

	h.Inbox() <- CreateRoom{Code: "ABC12", Name: "test", Reply: reply}
	rm1 := <-reply

	h.Inbox() <- GetRoom{Code: "ABC12", Reply: reply}
	rm2 := <-reply

	if rm1 == nil || rm2 == nil || rm1 != rm2 {
		t.Fatalf("expected same room pointer")
	}
}

func TestHub_GetMissingIsNil(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop(), nil)
	reply := make(chan *room.Room, 1)

	h.Inbox() <- GetRoom{Code: "NOPE1", Reply: reply}
	if rm := <-reply; rm != nil {
		t.Fatalf("expected nil for unknown code")
	}
}

func TestHub_EnsureCreatesOnce(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop(), nil)
	reply := make(chan *room.Room, 1)

	h.Inbox() <- EnsureRoom{Code: "XYZ99", Name: "first", Reply: reply}
	rm1 := <-reply
	h.Inbox() <- EnsureRoom{Code: "XYZ99", Name: "second", Reply: reply}
	rm2 := <-reply

	if rm1 != rm2 {
		t.Fatalf("ensure must not replace an existing room")
	}
}

func TestHub_RemoveForgetsRoom(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop(), nil)
	reply := make(chan *room.Room, 1)

	h.Inbox() <- CreateRoom{Code: "GONE1", Name: "test", Reply: reply}
	<-reply

	h.Inbox() <- RemoveRoom{Code: "GONE1"}
	h.Inbox() <- GetRoom{Code: "GONE1", Reply: reply}
	if rm := <-reply; rm != nil {
		t.Fatalf("expected room to be removed")
	}
}
