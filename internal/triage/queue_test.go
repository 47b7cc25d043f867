package triage

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertHeap checks the heap order and the position index against the backing array.
func assertHeap(t *testing.T, q *Queue) {
	t.Helper()
	for i := 1; i < len(q.heap); i++ {
		parent := (i - 1) / 2
		require.Falsef(t, q.heap[i].Less(q.heap[parent]),
			"heap violated at %d: %+v orders before parent %+v", i, q.heap[i], q.heap[parent])
	}
	require.Len(t, q.position, len(q.heap))
	for i, rec := range q.heap {
		require.Equal(t, i, q.position[rec.ArrivalSequence])
	}
}

func drain(q *Queue) []AdmissionRecord {
	var out []AdmissionRecord
	for {
		rec, ok := q.ExtractNext()
		if !ok {
			return out
		}
		out = append(out, rec)
	}
}

func anyKey(m map[uint64]bool) (uint64, bool) {
	for k := range m {
		return k, true
	}
	return 0, false
}

func names(records []AdmissionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SubjectName
	}
	return out
}

func TestAdmissionRecordLess(t *testing.T) {
	p1 := AdmissionRecord{SubjectName: "P1", Urgency: 2, ArrivalSequence: 0}
	p2 := AdmissionRecord{SubjectName: "P2", Urgency: 1, ArrivalSequence: 1}
	p3 := AdmissionRecord{SubjectName: "P3", Urgency: 2, ArrivalSequence: 2}
	p4 := AdmissionRecord{SubjectName: "P4", Urgency: 3, ArrivalSequence: 3}

	assert.True(t, p2.Less(p1))
	assert.False(t, p1.Less(p2))
	assert.True(t, p1.Less(p3))
	assert.False(t, p3.Less(p1))
	assert.True(t, p2.Less(p4))
	assert.False(t, p1.Less(p1))
}

func TestAdmissionRecordString(t *testing.T) {
	rec := AdmissionRecord{SubjectName: "Alice", Urgency: 3}
	assert.Equal(t, "Alice (Priority 3)", rec.String())
}

func TestQueue_AdmitAndSize(t *testing.T) {
	q := NewQueue()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Size())

	alice := q.Admit("Alice", 3)
	assert.Equal(t, uint64(0), alice.ArrivalSequence)
	assert.Equal(t, 1, q.Size())
	assert.False(t, q.IsEmpty())
	assert.Equal(t, "Alice", q.heap[0].SubjectName)

	bob := q.Admit("Bob", 1)
	assert.Equal(t, uint64(1), bob.ArrivalSequence)
	assert.Equal(t, 2, q.Size())
	assert.Equal(t, "Bob", q.heap[0].SubjectName)
	assert.Equal(t, "Alice", q.heap[1].SubjectName)
	assert.Equal(t, uint64(2), q.NextSequence())
	assertHeap(t, q)
}

func TestQueue_ExtractFromEmpty(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 3; i++ {
		rec, ok := q.ExtractNext()
		assert.False(t, ok)
		assert.Equal(t, AdmissionRecord{}, rec)
		assert.True(t, q.IsEmpty())
		assert.Equal(t, 0, q.Size())
	}
	assert.Equal(t, uint64(0), q.NextSequence())
}

func TestQueue_SingleElementRoundTrip(t *testing.T) {
	q := NewQueue()
	q.Admit("X", 7)

	rec, ok := q.ExtractNext()
	require.True(t, ok)
	assert.Equal(t, "X", rec.SubjectName)
	assert.Equal(t, 7, rec.Urgency)
	assert.True(t, q.IsEmpty())

	_, ok = q.ExtractNext()
	assert.False(t, ok)
}

func TestQueue_PriorityOrder(t *testing.T) {
	q := NewQueue()
	q.Admit("Patient A", 5)
	q.Admit("Patient B", 1)
	q.Admit("Patient C", 3)
	q.Admit("Patient D", 2)

	want := []string{"Patient B", "Patient D", "Patient C", "Patient A"}
	for i, name := range want {
		rec, ok := q.ExtractNext()
		require.True(t, ok)
		assert.Equal(t, name, rec.SubjectName)
		assert.Equal(t, len(want)-i-1, q.Size())
		assertHeap(t, q)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueue_TieBreakByArrival(t *testing.T) {
	q := NewQueue()
	q.Admit("A", 3)
	q.Admit("B", 1)
	q.Admit("C", 3)
	q.Admit("D", 1)
	q.Admit("E", 2)

	got := drain(q)
	assert.Equal(t, []string{"B", "D", "E", "A", "C"}, names(got))

	wantSeq := []uint64{1, 3, 4, 0, 2}
	for i, rec := range got {
		assert.Equal(t, wantSeq[i], rec.ArrivalSequence, "record %s", rec.SubjectName)
	}
}

func TestQueue_DuplicateAndBlankNames(t *testing.T) {
	q := NewQueue()
	q.Admit("", 2)
	q.Admit("Sam", 2)
	q.Admit("Sam", 2)
	assert.Equal(t, 3, q.Size())

	got := drain(q)
	assert.Equal(t, []string{"", "Sam", "Sam"}, names(got))
	assert.Less(t, got[1].ArrivalSequence, got[2].ArrivalSequence)
}

func TestQueue_AnyUrgencyAccepted(t *testing.T) {
	q := NewQueue()
	q.Admit("low", 1000)
	q.Admit("negative", -4)
	q.Admit("zero", 0)

	assert.Equal(t, []string{"negative", "zero", "low"}, names(drain(q)))
}

func TestQueue_PeekAll(t *testing.T) {
	q := NewQueue()
	assert.Empty(t, q.PeekAll())

	q.Admit("Alice", 3)
	q.Admit("Bob", 1)
	q.Admit("Charlie", 2)

	listing := q.PeekAll()
	assert.Len(t, listing, q.Size())
	assert.ElementsMatch(t, []string{"Alice (Priority 3)", "Bob (Priority 1)", "Charlie (Priority 2)"}, listing)

	q.ExtractNext()
	listing = q.PeekAll()
	assert.Len(t, listing, 2)
	assert.NotContains(t, listing, "Bob (Priority 1)")
}

func TestQueue_PeekDoesNotMutate(t *testing.T) {
	q := NewQueue()
	_, ok := q.Peek()
	assert.False(t, ok)

	q.Admit("A", 2)
	q.Admit("B", 1)
	rec, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "B", rec.SubjectName)
	assert.Equal(t, 2, q.Size())
}

func TestQueue_ReturnedRecordsAreCopies(t *testing.T) {
	q := NewQueue()
	admitted := q.Admit("A", 2)
	q.Admit("B", 3)

	admitted.Urgency = 9
	records := q.Records()
	records[0].ArrivalSequence = 99
	records[0].Urgency = -1

	rec, ok := q.ExtractNext()
	require.True(t, ok)
	assert.Equal(t, "A", rec.SubjectName)
	assert.Equal(t, 2, rec.Urgency)
	assert.Equal(t, uint64(0), rec.ArrivalSequence)
}

func TestQueue_ArrivalAndPriorityListings(t *testing.T) {
	q := NewQueue()
	q.Admit("A", 3)
	q.Admit("B", 1)
	q.Admit("C", 2)
	q.Admit("D", 1)

	assert.Equal(t, []string{"A", "B", "C", "D"}, names(q.ArrivalOrder()))
	assert.Equal(t, []string{"B", "D", "C", "A"}, names(q.PriorityOrder()))
	assert.Equal(t, 4, q.Size())
	assertHeap(t, q)
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue()
	for i, u := range []int{4, 2, 5, 1, 3, 2, 5} {
		q.Admit(string(rune('A'+i)), u)
	}

	rec, ok := q.Remove(5) // F, urgency 2
	require.True(t, ok)
	assert.Equal(t, "F", rec.SubjectName)
	assertHeap(t, q)

	_, ok = q.Remove(5)
	assert.False(t, ok)
	_, ok = q.Remove(100)
	assert.False(t, ok)

	assert.Equal(t, []string{"D", "B", "E", "A", "C", "G"}, names(drain(q)))
}

func TestQueue_RemoveLast(t *testing.T) {
	q := NewQueue()
	q.Admit("A", 1)
	q.Admit("B", 2)

	rec, ok := q.Remove(1)
	require.True(t, ok)
	assert.Equal(t, "B", rec.SubjectName)
	assert.Equal(t, 1, q.Size())
	assertHeap(t, q)
}

func TestQueue_UpdateUrgency(t *testing.T) {
	q := NewQueue()
	q.Admit("A", 3)
	q.Admit("B", 3)
	q.Admit("C", 2)

	rec, ok := q.UpdateUrgency(1, 1)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Urgency)
	assert.Equal(t, uint64(1), rec.ArrivalSequence)
	assertHeap(t, q)

	_, ok = q.UpdateUrgency(42, 1)
	assert.False(t, ok)

	// Downgrade keeps arrival order within the new level.
	_, ok = q.UpdateUrgency(2, 3)
	require.True(t, ok)
	assertHeap(t, q)

	assert.Equal(t, []string{"B", "A", "C"}, names(drain(q)))
}

func TestQueue_Restore(t *testing.T) {
	q := NewQueue()
	q.Admit("stale", 1)

	err := q.Restore([]AdmissionRecord{
		{SubjectName: "C", Urgency: 3, ArrivalSequence: 7},
		{SubjectName: "A", Urgency: 1, ArrivalSequence: 9},
		{SubjectName: "B", Urgency: 1, ArrivalSequence: 4},
	}, 0)
	require.NoError(t, err)
	assertHeap(t, q)
	assert.Equal(t, 3, q.Size())
	assert.Equal(t, uint64(10), q.NextSequence())

	next := q.Admit("D", 1)
	assert.Equal(t, uint64(10), next.ArrivalSequence)
	assert.Equal(t, []string{"B", "A", "D", "C"}, names(drain(q)))
}

func TestQueue_RestoreHonoursPersistedCounter(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Restore([]AdmissionRecord{{SubjectName: "A", Urgency: 2, ArrivalSequence: 3}}, 12))
	assert.Equal(t, uint64(12), q.NextSequence())

	require.NoError(t, q.Restore(nil, 5))
	assert.True(t, q.IsEmpty())
	assert.Equal(t, uint64(5), q.NextSequence())
}

func TestQueue_RestoreRejectsDuplicates(t *testing.T) {
	q := NewQueue()
	q.Admit("kept", 2)

	err := q.Restore([]AdmissionRecord{
		{SubjectName: "A", Urgency: 1, ArrivalSequence: 1},
		{SubjectName: "B", Urgency: 2, ArrivalSequence: 1},
	}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSequence))
	assert.Equal(t, []string{"kept (Priority 2)"}, q.PeekAll())
}

func TestQueue_ZeroValueUsable(t *testing.T) {
	var q Queue
	q.Admit("A", 2)
	q.Admit("B", 1)
	assert.Equal(t, []string{"B", "A"}, names(drain(&q)))
}

func TestQueue_RandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	q := NewQueue()
	admitted, extracted := 0, 0
	var lastSeq uint64
	live := map[uint64]bool{}

	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(10); {
		case op < 5:
			rec := q.Admit("p", rng.Intn(5)+1)
			if admitted > 0 {
				require.Greater(t, rec.ArrivalSequence, lastSeq)
			}
			lastSeq = rec.ArrivalSequence
			live[rec.ArrivalSequence] = true
			admitted++
		case op < 8:
			if rec, ok := q.ExtractNext(); ok {
				for _, other := range q.heap {
					require.False(t, other.Less(rec), "extracted %+v but %+v was waiting", rec, other)
				}
				delete(live, rec.ArrivalSequence)
				extracted++
			}
		case op < 9:
			if seq, ok := anyKey(live); ok {
				_, removed := q.Remove(seq)
				require.True(t, removed)
				delete(live, seq)
				extracted++
			}
		default:
			if seq, ok := anyKey(live); ok {
				_, updated := q.UpdateUrgency(seq, rng.Intn(5)+1)
				require.True(t, updated)
			}
		}
		assertHeap(t, q)
		require.Equal(t, admitted-extracted, q.Size())
		require.Len(t, q.PeekAll(), q.Size())
	}

	prev, ok := q.ExtractNext()
	for ok {
		var next AdmissionRecord
		next, ok = q.ExtractNext()
		if ok {
			require.False(t, next.Less(prev))
			prev = next
		}
	}
}
