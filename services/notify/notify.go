// Package notifysvc delivers checkout notifications to end users.
package notifysvc

import (
	"sync"
	"time"

	"github.com/trezcool/learnhub/core"
)

const (
	LevelSuccess = "success"
	LevelError   = "error"
)

var NowFunc = time.Now // mockable

// Message is one transient notification.
type Message struct {
	Level string    `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Queue buffers notifications until the client polls them.
type Queue struct {
	mu       sync.Mutex
	messages []Message
	next     core.Notifier
}

var _ core.Notifier = (*Queue)(nil)

// NewQueue returns an empty Queue. Every message is also forwarded to next when it is not nil.
func NewQueue(next core.Notifier) *Queue {
	return &Queue{next: next}
}

func (q *Queue) Success(msg string) { q.push(LevelSuccess, msg) }
func (q *Queue) Error(msg string)   { q.push(LevelError, msg) }

func (q *Queue) push(level, msg string) {
	q.mu.Lock()
	q.messages = append(q.messages, Message{Level: level, Text: msg, At: NowFunc().UTC()})
	q.mu.Unlock()

	if q.next != nil {
		if level == LevelSuccess {
			q.next.Success(msg)
		} else {
			q.next.Error(msg)
		}
	}
}

// Drain returns the buffered messages, oldest first, and empties the Queue.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgs := q.messages
	q.messages = nil
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs
}

// Log writes notifications to the application logger.
type Log struct {
	logger core.Logger
	extra  map[string]interface{}
}

var _ core.Notifier = (*Log)(nil)

func NewLog(logger core.Logger, extra map[string]interface{}) *Log {
	return &Log{logger: logger, extra: extra}
}

func (n *Log) Success(msg string) { n.logger.Info("notify: "+msg, n.extra) }
func (n *Log) Error(msg string)   { n.logger.Warn("notify: "+msg, n.extra) }
