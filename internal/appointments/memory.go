package appointments

import (
	"context"
	"sync"
	"time"
)

type node struct {
	appt Appointment
	next *node
}

// MemoryQueue is a singly linked list with front and rear pointers.
type MemoryQueue struct {
	mu    sync.Mutex
	front *node
	rear  *node
	size  int
	now   func() time.Time
}

// NewMemoryQueue creates an empty line.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{now: time.Now}
}

func (q *MemoryQueue) Enqueue(_ context.Context, name string) (Appointment, error) {
	appt, err := newAppointment(name, q.now())
	if err != nil {
		return Appointment{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	n := &node{appt: appt}
	if q.rear == nil {
		q.front = n
	} else {
		q.rear.next = n
	}
	q.rear = n
	q.size++
	return appt, nil
}

func (q *MemoryQueue) Dequeue(_ context.Context) (Appointment, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.front == nil {
		return Appointment{}, false, nil
	}
	n := q.front
	q.front = n.next
	if q.front == nil {
		q.rear = nil
	}
	q.size--
	return n.appt, true, nil
}

func (q *MemoryQueue) List(_ context.Context) ([]Appointment, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Appointment, 0, q.size)
	for n := q.front; n != nil; n = n.next {
		out = append(out, n.appt)
	}
	return out, nil
}

// Len is the number of requests waiting.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}
