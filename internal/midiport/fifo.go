package midiport

// fifo is the bounded hand-off between a driver's listener goroutine and the
// audio thread. push never blocks: when the queue is full the message is
// dropped and push reports false. pop never blocks either.
type fifo struct {
	ch chan Message
}

func newFifo(capacity int) *fifo {
	if capacity <= 0 {
		capacity = 128
	}
	return &fifo{ch: make(chan Message, capacity)}
}

func (f *fifo) push(m Message) bool {
	select {
	case f.ch <- m:
		return true
	default:
		return false
	}
}

func (f *fifo) pop() (Message, bool) {
	select {
	case m := <-f.ch:
		return m, true
	default:
		return Message{}, false
	}
}
