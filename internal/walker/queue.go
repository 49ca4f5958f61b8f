package walker

import "sync"

// dirQueue is the shared work queue consumed by parallel workers. It tracks
// the number of outstanding tasks (queued or currently being processed) so
// workers can detect termination: the scan is done when the queue is empty
// and no worker holds in-flight work.
//
// Push during processing keeps the outstanding count above zero until the
// producing worker calls done, so there is no window where an empty queue is
// mistaken for completion.
type dirQueue struct {
	mu          sync.Mutex
	cond        *sync.Cond
	items       []dirTask
	outstanding int
	closed      bool
}

func newDirQueue() *dirQueue {
	q := &dirQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues a task and raises the outstanding count.
func (q *dirQueue) push(t dirTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, t)
	q.outstanding++
	q.cond.Signal()
}

// pop blocks until a task is available or the queue terminates. The second
// return is false when no more work will ever arrive (all outstanding tasks
// finished, or the queue was force-closed by cancellation).
func (q *dirQueue) pop() (dirTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if len(q.items) > 0 {
			t := q.items[len(q.items)-1]
			q.items = q.items[:len(q.items)-1]
			return t, true
		}
		if q.closed || q.outstanding == 0 {
			return dirTask{}, false
		}
		q.cond.Wait()
	}
}

// done lowers the outstanding count after a worker finishes a task,
// including any pushes of child directories it performed. When the count
// reaches zero all blocked workers are released.
func (q *dirQueue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.outstanding--
	if q.outstanding == 0 {
		q.cond.Broadcast()
	}
}

// close force-terminates the queue, releasing all blocked workers and
// dropping queued tasks. Used for cancellation.
func (q *dirQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}
