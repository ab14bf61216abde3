package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

var (
	alice = models.MustAddress("0x00000000000000000000000000000000000000c1")
	bob   = models.MustAddress("0x00000000000000000000000000000000000000b1")
	carol = models.MustAddress("0x00000000000000000000000000000000000000d1")
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

// connect registers a client and waits until the hub has stored it.
func connect(t *testing.T, hub *Hub, id string, addr models.Address) *Client {
	t.Helper()
	before := hub.Connected(addr)
	c := &Client{ID: id, Address: addr, Send: make(chan []byte, 8)}
	hub.RegisterClient(c)
	deadline := time.Now().Add(2 * time.Second)
	for hub.Connected(addr) == before {
		if time.Now().After(deadline) {
			t.Fatalf("client %s never registered", id)
		}
		time.Sleep(time.Millisecond)
	}
	return c
}

func receive(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case msg := <-c.Send:
		var out map[string]any
		if err := json.Unmarshal(msg, &out); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		return out
	case <-time.After(2 * time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("client %s got unexpected message %s", c.ID, msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRoutesToRecipientsOnly(t *testing.T) {
	hub := runHub(t)
	a := connect(t, hub, "a", alice)
	b := connect(t, hub, "b", bob)
	c := connect(t, hub, "c", carol)

	ev := escrow.Event{
		Name:       escrow.EventJobCompleted,
		Data:       map[string]any{"job_id": 3},
		Recipients: []models.Address{alice, bob, alice},
	}
	if err := hub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, client := range []*Client{a, b} {
		msg := receive(t, client)
		if msg["type"] != "escrow_event" {
			t.Fatalf("unexpected message %v", msg)
		}
		inner, _ := msg["event"].(map[string]any)
		if inner["name"] != string(escrow.EventJobCompleted) {
			t.Fatalf("unexpected event %v", inner)
		}
	}
	assertSilent(t, a)
	assertSilent(t, c)
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := runHub(t)
	a := connect(t, hub, "a", alice)
	hub.UnregisterClient(a)

	select {
	case _, ok := <-a.Send:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("send channel not closed")
	}
	if n := hub.Connected(alice); n != 0 {
		t.Fatalf("expected no connections, got %d", n)
	}
}

func TestHubStopReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	a := connect(t, hub, "a", alice)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("hub did not stop")
	}
	if _, ok := <-a.Send; ok {
		t.Fatalf("expected send closed on stop")
	}

	released := make(chan bool, 1)
	go func() {
		hub.UnregisterClient(a)
		late := &Client{ID: "late", Address: bob, Send: make(chan []byte, 1)}
		ok := hub.RegisterClient(late)
		_, open := <-late.Send
		released <- !ok && !open
	}()
	select {
	case ok := <-released:
		if !ok {
			t.Fatalf("expected late registration rejected with send closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("hub calls blocked after stop")
	}
}

func TestRedisPublisherReachesOtherHubs(t *testing.T) {
	_, rdb := newRedis(t)
	hub := runHub(t)
	b := connect(t, hub, "b", bob)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- Forward(ctx, rdb, hub, ready) }()
	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("forward stopped early: %v", err)
	}

	pub := NewRedisPublisher(rdb)
	ev := escrow.Event{
		Name:       escrow.EventPaymentReleased,
		Data:       map[string]any{"amount": int64(950_000)},
		Recipients: []models.Address{bob},
	}
	if err := pub.Publish(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg := receive(t, b)
	inner, _ := msg["event"].(map[string]any)
	data, _ := inner["data"].(map[string]any)
	if data["amount"] != float64(950_000) {
		t.Fatalf("unexpected payload %v", msg)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("forward: %v", err)
	}
}

func TestNonceIsSingleUse(t *testing.T) {
	_, rdb := newRedis(t)
	store := NewNonceStore(rdb, 5*time.Minute)
	ctx := context.Background()

	nonce, err := store.Issue(ctx, alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := store.Consume(ctx, alice, "wrong"); !errors.Is(err, ErrNonceNotFound) {
		t.Fatalf("expected ErrNonceNotFound for wrong nonce, got %v", err)
	}
	// A wrong guess burns the challenge too.
	if err := store.Consume(ctx, alice, nonce); !errors.Is(err, ErrNonceNotFound) {
		t.Fatalf("expected ErrNonceNotFound after a wrong guess, got %v", err)
	}

	nonce, err = store.Issue(ctx, alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := store.Consume(ctx, alice, nonce); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := store.Consume(ctx, alice, nonce); !errors.Is(err, ErrNonceNotFound) {
		t.Fatalf("expected second consume to fail, got %v", err)
	}
}

func TestNonceExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewNonceStore(rdb, 5*time.Minute)
	ctx := context.Background()

	nonce, err := store.Issue(ctx, bob)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	mr.FastForward(6 * time.Minute)
	if err := store.Consume(ctx, bob, nonce); !errors.Is(err, ErrNonceNotFound) {
		t.Fatalf("expected expired nonce, got %v", err)
	}
}
