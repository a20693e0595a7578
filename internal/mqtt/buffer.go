package mqtt

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue holds messages published while disconnected. Only the newest
// message per topic is kept. Not safe for concurrent use; the caller must
// synchronize.
type offlineQueue struct {
	order    []string // topics in first-queued order
	msgs     map[string]bufferedMsg
	replaced int // messages superseded since last drain
}

func newOfflineQueue() *offlineQueue {
	return &offlineQueue{msgs: make(map[string]bufferedMsg)}
}

func (q *offlineQueue) push(msg bufferedMsg) {
	if _, ok := q.msgs[msg.topic]; ok {
		q.replaced++
	} else {
		q.order = append(q.order, msg.topic)
	}
	q.msgs[msg.topic] = msg
}

// drain returns the queued messages oldest topic first, along with how many
// were superseded while queued, and empties the queue.
func (q *offlineQueue) drain() ([]bufferedMsg, int) {
	if len(q.order) == 0 {
		return nil, 0
	}
	out := make([]bufferedMsg, 0, len(q.order))
	for _, topic := range q.order {
		out = append(out, q.msgs[topic])
	}
	replaced := q.replaced
	q.order = nil
	q.msgs = make(map[string]bufferedMsg)
	q.replaced = 0
	return out, replaced
}

func (q *offlineQueue) len() int {
	return len(q.order)
}
