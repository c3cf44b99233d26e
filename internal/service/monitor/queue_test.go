package monitor

import (
	"testing"

	"github.com/KNICEX/option-monitor/internal/service/strategy"
	"github.com/stretchr/testify/assert"
)

func TestSignalQueue(t *testing.T) {
	var q signalQueue

	first := testSignal("XYZ")
	second := testSignal("XYZ")
	q.push(first)
	q.push(second)

	drained := q.drain()
	// FIFO
	assert.Equal(t, []strategy.Signal{first, second}, drained)

	// drain 之后队列即空
	assert.Empty(t, q.drain())
}

func TestSignalQueue_PushNothing(t *testing.T) {
	var q signalQueue
	q.push()
	assert.Empty(t, q.drain())
}
