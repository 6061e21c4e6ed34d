package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleCollapsesBurst(t *testing.T) {
	d := New(100 * time.Millisecond)
	var calls, last int32

	for i := int32(1); i <= 5; i++ {
		i := i
		d.Schedule(func() {
			atomic.AddInt32(&calls, 1)
			atomic.StoreInt32(&last, i)
		})
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	// Give a stray timer the chance to misfire
	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.EqualValues(t, 5, atomic.LoadInt32(&last))
	assert.False(t, d.Pending())
}

func TestScheduleReportsCancellation(t *testing.T) {
	d := New(time.Hour)
	defer d.Stop()

	assert.False(t, d.Schedule(func() {}))
	assert.True(t, d.Pending())
	assert.True(t, d.Schedule(func() {}))
}

func TestCancelPreventsCall(t *testing.T) {
	d := New(20 * time.Millisecond)
	var calls int32

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestStopRefusesNewSchedules(t *testing.T) {
	d := New(10 * time.Millisecond)
	var calls int32

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	d.Schedule(func() { atomic.AddInt32(&calls, 1) })

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.False(t, d.Pending())
}

func TestSeparatedSchedulesBothRun(t *testing.T) {
	d := New(10 * time.Millisecond)
	var calls int32

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, 5*time.Millisecond)
}
