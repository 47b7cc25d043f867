package triage

import (
	"fmt"
	"sort"
)

// Queue is an array-backed binary min-heap of admissions keyed by
// (Urgency, ArrivalSequence). It does no locking; wrap it in a Desk or guard
// it yourself when sharing across goroutines.
type Queue struct {
	heap         []AdmissionRecord
	position     map[uint64]int // arrival sequence -> heap index
	nextSequence uint64
}

// NewQueue returns an empty queue whose first admission gets sequence 0.
func NewQueue() *Queue {
	return &Queue{position: make(map[uint64]int)}
}

// Admit adds a patient and returns a copy of the stored record. Name and
// urgency are taken as given.
func (q *Queue) Admit(name string, urgency int) AdmissionRecord {
	rec := AdmissionRecord{
		SubjectName:     name,
		Urgency:         urgency,
		ArrivalSequence: q.nextSequence,
	}
	q.nextSequence++

	if q.position == nil {
		q.position = make(map[uint64]int)
	}
	q.heap = append(q.heap, rec)
	i := len(q.heap) - 1
	q.position[rec.ArrivalSequence] = i
	q.siftUp(i)
	return rec
}

// ExtractNext removes and returns the most urgent, earliest-arrived record.
// The bool is false when the queue is empty.
func (q *Queue) ExtractNext() (AdmissionRecord, bool) {
	if len(q.heap) == 0 {
		return AdmissionRecord{}, false
	}
	return q.removeAt(0), true
}

// Peek returns the record ExtractNext would return without removing it.
func (q *Queue) Peek() (AdmissionRecord, bool) {
	if len(q.heap) == 0 {
		return AdmissionRecord{}, false
	}
	return q.heap[0], true
}

// IsEmpty reports whether nobody is waiting.
func (q *Queue) IsEmpty() bool {
	return len(q.heap) == 0
}

// Size is the number of admitted records not yet extracted or removed.
func (q *Queue) Size() int {
	return len(q.heap)
}

// NextSequence is the arrival sequence the next admission will receive.
func (q *Queue) NextSequence() uint64 {
	return q.nextSequence
}

// PeekAll lists every waiting record in raw heap order, not priority order.
func (q *Queue) PeekAll() []string {
	out := make([]string, len(q.heap))
	for i, rec := range q.heap {
		out[i] = rec.String()
	}
	return out
}

// Records returns copies of the waiting records in heap order.
func (q *Queue) Records() []AdmissionRecord {
	out := make([]AdmissionRecord, len(q.heap))
	copy(out, q.heap)
	return out
}

// ArrivalOrder returns copies sorted by arrival sequence.
func (q *Queue) ArrivalOrder() []AdmissionRecord {
	out := q.Records()
	sort.Slice(out, func(i, j int) bool {
		return out[i].ArrivalSequence < out[j].ArrivalSequence
	})
	return out
}

// PriorityOrder returns copies in the order ExtractNext would yield them.
func (q *Queue) PriorityOrder() []AdmissionRecord {
	out := q.Records()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}

// Remove takes the record with the given arrival sequence out of the queue.
func (q *Queue) Remove(seq uint64) (AdmissionRecord, bool) {
	i, ok := q.position[seq]
	if !ok {
		return AdmissionRecord{}, false
	}
	return q.removeAt(i), true
}

// UpdateUrgency changes a waiting record's urgency and keeps its arrival
// sequence, so it stays ahead of later arrivals at the same level.
func (q *Queue) UpdateUrgency(seq uint64, urgency int) (AdmissionRecord, bool) {
	i, ok := q.position[seq]
	if !ok {
		return AdmissionRecord{}, false
	}
	q.heap[i].Urgency = urgency
	rec := q.heap[i]
	q.fix(i)
	return rec, true
}

// Restore replaces the queue contents with persisted records and moves the
// sequence counter to at least next and past every restored sequence.
// Records with duplicate sequences are rejected and leave the queue unchanged.
func (q *Queue) Restore(records []AdmissionRecord, next uint64) error {
	position := make(map[uint64]int, len(records))
	heap := make([]AdmissionRecord, len(records))
	for i, rec := range records {
		if _, dup := position[rec.ArrivalSequence]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateSequence, rec.ArrivalSequence)
		}
		position[rec.ArrivalSequence] = i
		heap[i] = rec
		if rec.ArrivalSequence >= next {
			next = rec.ArrivalSequence + 1
		}
	}

	q.heap = heap
	q.position = position
	q.nextSequence = next
	for i := len(q.heap)/2 - 1; i >= 0; i-- {
		q.siftDown(i)
	}
	return nil
}

// reinsert puts back a record that was taken out, keeping its sequence.
// The counter is untouched.
func (q *Queue) reinsert(rec AdmissionRecord) {
	if q.position == nil {
		q.position = make(map[uint64]int)
	}
	q.heap = append(q.heap, rec)
	i := len(q.heap) - 1
	q.position[rec.ArrivalSequence] = i
	q.siftUp(i)
}

// removeAt swaps index i with the last element, pops it and repairs the heap.
func (q *Queue) removeAt(i int) AdmissionRecord {
	last := len(q.heap) - 1
	q.swap(i, last)
	rec := q.heap[last]
	q.heap = q.heap[:last]
	delete(q.position, rec.ArrivalSequence)
	if i < len(q.heap) {
		q.fix(i)
	}
	return rec
}

func (q *Queue) fix(i int) {
	if !q.siftDown(i) {
		q.siftUp(i)
	}
}

func (q *Queue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.heap[i].Less(q.heap[parent]) {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

// siftDown reports whether the element at i moved.
func (q *Queue) siftDown(i int) bool {
	start := i
	n := len(q.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && q.heap[left].Less(q.heap[smallest]) {
			smallest = left
		}
		if right < n && q.heap[right].Less(q.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			return i != start
		}
		q.swap(i, smallest)
		i = smallest
	}
}

func (q *Queue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.position[q.heap[i].ArrivalSequence] = i
	q.position[q.heap[j].ArrivalSequence] = j
}
