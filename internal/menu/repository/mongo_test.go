package repository

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedai/backoffice-service/internal/model"
)

func snapshot(ids ...string) []model.MenuItem {
	var items []model.MenuItem
	for _, id := range ids {
		items = append(items, model.MenuItem{BaseModel: model.BaseModel{ID: id}})
	}
	return items
}

func TestPushLatestReplacesPendingSnapshot(t *testing.T) {
	ch := make(chan []model.MenuItem, 1)

	pushLatest(ch, snapshot("stale"))
	pushLatest(ch, snapshot("fresh"))

	got := <-ch
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)

	// the stale snapshot was dropped, not queued behind the fresh one
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot: %v", extra)
	default:
	}
}

func TestPushLatestNeverBlocksWithoutConsumer(t *testing.T) {
	ch := make(chan []model.MenuItem, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			pushLatest(ch, snapshot(strconv.Itoa(i)))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pushLatest blocked with no consumer draining the channel")
	}

	// only the most recent snapshot survives
	got := <-ch
	require.Len(t, got, 1)
	assert.Equal(t, "99", got[0].ID)
}

func TestPushLatestDeliversInOrderToKeptUpConsumer(t *testing.T) {
	ch := make(chan []model.MenuItem, 1)

	pushLatest(ch, snapshot("first"))
	assert.Equal(t, "first", (<-ch)[0].ID)

	pushLatest(ch, snapshot("second"))
	assert.Equal(t, "second", (<-ch)[0].ID)
}
