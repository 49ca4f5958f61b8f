package walker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueueTerminatesWhenDrained(t *testing.T) {
	q := newDirQueue()
	q.push(dirTask{path: "/a", depth: 1})

	task, ok := q.pop()
	if !ok || task.path != "/a" {
		t.Fatalf("pop = (%v, %v), want /a task", task, ok)
	}
	q.done()

	if _, ok := q.pop(); ok {
		t.Error("pop after drain must report termination")
	}
}

func TestQueuePushDuringProcessingKeepsAlive(t *testing.T) {
	// A worker that pushes children before calling done must keep the queue
	// alive: outstanding covers both the queued child and the in-flight task.
	q := newDirQueue()
	q.push(dirTask{path: "/root", depth: 0})

	parent, ok := q.pop()
	if !ok {
		t.Fatal("expected root task")
	}
	q.push(dirTask{path: parent.path + "/child", depth: 1})
	q.done()

	child, ok := q.pop()
	if !ok {
		t.Fatal("queue terminated while a child task was outstanding")
	}
	if child.depth != 1 {
		t.Errorf("child depth = %d, want 1", child.depth)
	}
	q.done()

	if _, ok := q.pop(); ok {
		t.Error("pop after final done must report termination")
	}
}

func TestQueueCloseReleasesBlockedWorkers(t *testing.T) {
	q := newDirQueue()
	q.push(dirTask{path: "/a", depth: 1})
	q.pop() // leave outstanding > 0 so pop would block

	released := make(chan bool, 1)
	go func() {
		_, ok := q.pop()
		released <- ok
	}()

	q.close()

	select {
	case ok := <-released:
		if ok {
			t.Error("pop on a closed queue must report termination")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("blocked worker was not released by close")
	}
}

func TestQueueConcurrentWorkersDrainFanout(t *testing.T) {
	// Simulated traversal: each task at depth < 3 fans out into 4 children.
	// All workers must observe termination and every task must be processed
	// exactly once in aggregate.
	q := newDirQueue()
	q.push(dirTask{path: "r", depth: 0})

	var processed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, ok := q.pop()
				if !ok {
					return
				}
				processed.Add(1)
				if task.depth < 3 {
					for c := 0; c < 4; c++ {
						q.push(dirTask{path: task.path + "/c", depth: task.depth + 1})
					}
				}
				q.done()
			}
		}()
	}
	wg.Wait()

	// 1 + 4 + 16 + 64 tasks in the fanout tree.
	if got := processed.Load(); got != 85 {
		t.Errorf("processed %d tasks, want 85", got)
	}
}
