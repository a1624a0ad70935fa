package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// TypeCheckIn marks messages published after a successful check-in.
const TypeCheckIn = "checkin"

// CheckIn is the payload the worker uses to verify that a roster record
// has its matching student-side summary, repairing it when missing.
type CheckIn struct {
	TeacherEmail string `json:"teacher_email"`
	SessionID    string `json:"session_id"`
	StudentEmail string `json:"student_email"`
}

// Message represents work to be processed.
type Message struct {
	Type string `json:"type"`
	Body []byte `json:"body"`
}

// EncodeCheckIn builds a check-in message.
func EncodeCheckIn(c CheckIn) (Message, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TypeCheckIn, Body: body}, nil
}

// DecodeCheckIn parses a check-in message body.
func DecodeCheckIn(msg Message) (CheckIn, error) {
	var c CheckIn
	err := json.Unmarshal(msg.Body, &c)
	return c, err
}

// Queue is the abstraction over different backends.
type Queue interface {
	Publish(ctx context.Context, msg Message) error
	Consume(ctx context.Context) (<-chan Message, error)
}

// InMemory is a minimal channel-backed queue for dev/testing.
type InMemory struct {
	ch chan Message
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Message, size)}
}

// Publish enqueues a message.
func (q *InMemory) Publish(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel for workers.
func (q *InMemory) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case msg := <-q.ch:
				out <- msg
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue implements a simple Redis list-backed queue.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue using LPUSH/BRPOP semantics.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "classmark:reconcile"
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues a message as JSON.
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, raw).Err()
}

// Consume streams messages using BRPOP.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) == 2 {
				var msg Message
				if err := json.Unmarshal([]byte(res[1]), &msg); err == nil {
					out <- msg
				}
			}
		}
	}()
	return out, nil
}
