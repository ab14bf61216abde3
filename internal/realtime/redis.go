package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

// EventsChannel carries committed escrow events between API processes.
const EventsChannel = "escrow:events"

// NewRedis creates a new Redis client
func NewRedis(addr, password string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	log.Printf("Redis client created (addr: %s)\n", addr)
	return rdb
}

type envelope struct {
	Recipients []models.Address `json:"recipients"`
	Message    json.RawMessage  `json:"message"`
}

// RedisPublisher publishes escrow events on EventsChannel so that every API
// process can hand them to its own websocket clients.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: EventsChannel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev escrow.Event) error {
	msg, err := Message(ev)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope{Recipients: ev.Recipients, Message: msg})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, payload).Err()
}

// Forward relays everything published on EventsChannel to hub until ctx is
// done. ready, if not nil, is closed once the subscription is live.
func Forward(ctx context.Context, rdb *redis.Client, hub *Hub, ready chan<- struct{}) error {
	sub := rdb.Subscribe(ctx, EventsChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("Ignoring malformed event on %s: %v", EventsChannel, err)
				continue
			}
			hub.Deliver(env.Message, env.Recipients)
		}
	}
}

var ErrNonceNotFound = errors.New("login challenge expired or not found")

// NonceStore keeps one pending login challenge per address.
type NonceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewNonceStore(rdb *redis.Client, ttl time.Duration) *NonceStore {
	return &NonceStore{rdb: rdb, ttl: ttl}
}

func nonceKey(addr models.Address) string {
	return "auth:nonce:" + addr.String()
}

// Issue replaces any pending challenge of addr with a fresh one.
func (s *NonceStore) Issue(ctx context.Context, addr models.Address) (string, error) {
	nonce := uuid.NewString()
	if err := s.rdb.Set(ctx, nonceKey(addr), nonce, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store nonce: %w", err)
	}
	return nonce, nil
}

// Consume succeeds at most once per issued nonce.
func (s *NonceStore) Consume(ctx context.Context, addr models.Address, nonce string) error {
	stored, err := s.rdb.GetDel(ctx, nonceKey(addr)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNonceNotFound
	}
	if err != nil {
		return fmt.Errorf("load nonce: %w", err)
	}
	if stored != nonce {
		return ErrNonceNotFound
	}
	return nil
}
