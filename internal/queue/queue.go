// package queue implements the per-recipient food request queue.
package queue

import "iter"

// Entry is a single pending food request.
type Entry struct {
	RecipientID int
	Quantity    int
}

// RequestQueue holds pending requests for one recipient.
//
// Urgent entries always sit ahead of normal ones, so the queue is kept as two
// parts: a stack of urgent entries (newest on top) followed by a FIFO of normal
// entries. Reading the stack top-down and then the FIFO front-to-back yields
// the service order.
type RequestQueue struct {
	urgent []Entry // index len-1 is the front of the queue
	normal []Entry
	head   int // first live index in normal
}

// New creates an empty [RequestQueue].
func New() *RequestQueue {
	return &RequestQueue{}
}

// Enqueue adds a request. Normal requests go to the back, urgent requests go
// to the very front, ahead of everything already queued.
//
// Quantity is not validated here.
func (q *RequestQueue) Enqueue(recipientID, quantity int, urgent bool) {
	e := Entry{RecipientID: recipientID, Quantity: quantity}
	if urgent {
		q.urgent = append(q.urgent, e)
		return
	}
	q.normal = append(q.normal, e)
}

// Dequeue removes and returns the front entry. The boolean is false when the queue is empty.
func (q *RequestQueue) Dequeue() (Entry, bool) {
	if n := len(q.urgent); n > 0 {
		e := q.urgent[n-1]
		q.urgent = q.urgent[:n-1]
		return e, true
	}
	if q.head < len(q.normal) {
		e := q.normal[q.head]
		q.normal[q.head] = Entry{}
		q.head++
		q.compact()
		return e, true
	}
	return Entry{}, false
}

// compact releases the consumed prefix of the normal FIFO once it dominates the slice.
func (q *RequestQueue) compact() {
	if q.head == len(q.normal) {
		q.normal = q.normal[:0]
		q.head = 0
		return
	}
	if q.head >= 32 && q.head*2 >= len(q.normal) {
		q.normal = append(q.normal[:0], q.normal[q.head:]...)
		q.head = 0
	}
}

// Size returns the number of pending entries.
func (q *RequestQueue) Size() int {
	return len(q.urgent) + len(q.normal) - q.head
}

// IsEmpty reports whether no entries are pending.
func (q *RequestQueue) IsEmpty() bool {
	return q.Size() == 0
}

// PeekAll returns a front-to-back iterator over pending entries.
// It does not consume anything and every call starts a fresh traversal.
func (q *RequestQueue) PeekAll() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i := len(q.urgent) - 1; i >= 0; i-- {
			if !yield(q.urgent[i]) {
				return
			}
		}
		for i := q.head; i < len(q.normal); i++ {
			if !yield(q.normal[i]) {
				return
			}
		}
	}
}
