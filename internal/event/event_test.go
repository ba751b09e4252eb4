package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"mindtree/local-app/internal/log"
)

func TestPublishReachesSubscribersOfType(t *testing.T) {
	em := NewEventManager(log.NewNopLogger())

	var deleted, changed int32
	em.Subscribe(TreeDeleted, func(e Event) {
		assert.Equal(t, int64(7), e.Data.(TreeEvent).TreeID)
		atomic.AddInt32(&deleted, 1)
	})
	em.Subscribe(TreeDeleted, func(Event) { atomic.AddInt32(&deleted, 1) })
	em.Subscribe(NodeChanged, func(Event) { atomic.AddInt32(&changed, 1) })

	em.Publish(Event{Type: TreeDeleted, Data: TreeEvent{TreeID: 7}})
	em.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&deleted))
	assert.Equal(t, int32(0), atomic.LoadInt32(&changed))
}

func TestPanickingHandlerIsContained(t *testing.T) {
	em := NewEventManager(log.NewNopLogger())

	var ran int32
	em.Subscribe(NodeChanged, func(Event) { panic("boom") })
	em.Subscribe(NodeChanged, func(Event) { atomic.AddInt32(&ran, 1) })

	em.Publish(Event{Type: NodeChanged, Data: NodeEvent{NodeID: "1"}})
	em.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "RootNodeRenamed", RootNodeRenamed.String())
	assert.Equal(t, "Unknown", EventType(99).String())
}
