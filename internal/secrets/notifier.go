package secrets

import "sync"

// Update announces that a user's secret changed. Generation increases
// monotonically per user so a consumer holding the result of a slower,
// older fetch can recognise and discard it.
type Update struct {
	UserID     string
	Generation uint64
}

// Notifier is a typed in-process broadcast for secret changes. It replaces
// the page-scoped string event the UI used: subscribers register for one
// user id and receive Update values until they cancel.
type Notifier struct {
	mu          sync.Mutex
	subscribers map[string]map[int]chan Update
	generations map[string]uint64
	nextID      int
}

// NewNotifier constructs an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[string]map[int]chan Update),
		generations: make(map[string]uint64),
	}
}

// Subscribe registers interest in updates for the given user. The returned
// cancel func must be called to release the subscription; the channel is
// closed once cancelled.
func (n *Notifier) Subscribe(userID string) (<-chan Update, func()) {
	ch := make(chan Update, 8)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	subs, ok := n.subscribers[userID]
	if !ok {
		subs = make(map[int]chan Update)
		n.subscribers[userID] = subs
	}
	subs[id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		subs, ok := n.subscribers[userID]
		if !ok {
			return
		}
		if ch, ok := subs[id]; ok {
			delete(subs, id)
			close(ch)
		}
		if len(subs) == 0 {
			delete(n.subscribers, userID)
		}
	}

	return ch, cancel
}

// Publish emits an update for the user and returns its generation. Slow
// subscribers are skipped rather than blocking the publisher; they catch up
// on the next event.
func (n *Notifier) Publish(userID string) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.generations[userID]++
	update := Update{UserID: userID, Generation: n.generations[userID]}

	for _, ch := range n.subscribers[userID] {
		select {
		case ch <- update:
		default:
		}
	}

	return update.Generation
}

// Generation returns the latest published generation for the user.
func (n *Notifier) Generation(userID string) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.generations[userID]
}
