// Package event handles triggering of operations without direct dependency
package event

import (
	"context"
	"sync"

	"mindtree/local-app/internal/log"
)

type EventType int

const (
	TreeCreated EventType = iota
	TreeDeleted
	TreeRenamed
	TreeSelected
	NodeChanged
	RootNodeRenamed
	GenerationFailed
)

func (t EventType) String() string {
	switch t {
	case TreeCreated:
		return "TreeCreated"
	case TreeDeleted:
		return "TreeDeleted"
	case TreeRenamed:
		return "TreeRenamed"
	case TreeSelected:
		return "TreeSelected"
	case NodeChanged:
		return "NodeChanged"
	case RootNodeRenamed:
		return "RootNodeRenamed"
	case GenerationFailed:
		return "GenerationFailed"
	default:
		return "Unknown"
	}
}

// TreeEvent is the payload of tree level events. Source identifies the publishing
// editor so that it can ignore its own events.
type TreeEvent struct {
	TreeID int64
	Name   string
	Source string
}

// NodeEvent is the payload of node level events.
type NodeEvent struct {
	TreeID int64
	NodeID string
	Source string
	Err    error
}

type Event struct {
	Type EventType
	Data interface{}
}

type EventHandler func(Event)

type EventManager struct {
	subscribers map[EventType][]EventHandler
	mu          sync.RWMutex
	wg          sync.WaitGroup
	logger      *log.Logger
}

func NewEventManager(logger *log.Logger) *EventManager {
	return &EventManager{
		subscribers: make(map[EventType][]EventHandler),
		logger:      logger,
	}
}

func (em *EventManager) Subscribe(eventType EventType, handler EventHandler) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.subscribers[eventType] = append(em.subscribers[eventType], handler)
}

// Publish runs every handler of the event type in its own goroutine.
func (em *EventManager) Publish(event Event) {
	em.mu.RLock()
	defer em.mu.RUnlock()
	for _, handler := range em.subscribers[event.Type] {
		em.wg.Add(1)
		go func(h EventHandler) {
			defer em.wg.Done()
			defer func() {
				if r := recover(); r != nil { // Avoid nil panics
					em.logger.Error(context.Background(), "Panic in event handler", log.Fields{
						"event": event.Type.String(),
						"panic": r,
					})
				}
			}()
			h(event)
		}(handler)
	}
}

// Wait blocks until every handler started so far has returned.
func (em *EventManager) Wait() {
	em.wg.Wait()
}
