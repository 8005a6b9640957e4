package cpu

import (
	"slices"
	"strconv"
)

// Queue is a first-in, first-out list of words, used for the inbox and outbox.
type Queue struct {
	Data []Code
}

// Push appends a value to the back of the queue.
func (q *Queue) Push(value Code) {
	q.Data = append(q.Data, value)
}

// Pop removes and returns the value at the front of the queue.
func (q *Queue) Pop() (value Code, ok bool) {
	value, ok = q.Peek()
	if ok {
		q.Data = q.Data[1:]
	}
	return
}

func (q *Queue) Empty() bool {
	return len(q.Data) == 0
}

func (q *Queue) Len() int {
	return len(q.Data)
}

// Peek returns the value at the front of the queue, without removing it.
func (q *Queue) Peek() (value Code, ok bool) {
	if q.Empty() {
		return
	}

	return q.Data[0], true
}

func (q *Queue) Reset() {
	q.Data = nil
}

// Replace discards the queue contents and installs values in its place.
func (q *Queue) Replace(values ...Code) {
	q.Data = slices.Clone(values)
}

// Values returns a copy of the queue contents, front first.
func (q *Queue) Values() []Code {
	return slices.Clone(q.Data)
}

// String returns the queue contents as a bracketed list.
func (q *Queue) String() string {
	text := "["
	for n, value := range q.Data {
		if n > 0 {
			text += ", "
		}
		text += strconv.Itoa(int(value))
	}
	return text + "]"
}
