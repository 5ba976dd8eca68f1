package convindex

import "github.com/google/uuid"

// Subscribe registers a change listener. The returned channel receives one
// buffered signal per mutation batch; signals carry no payload and may be
// coalesced, consumers re-read the full list.
func (ix *Index) Subscribe() (string, <-chan struct{}) {
	id := uuid.NewString()
	ch := make(chan struct{}, 1)

	ix.subsMu.Lock()
	ix.subs[id] = ch
	ix.subsMu.Unlock()

	return id, ch
}

// Unsubscribe removes a listener registered with Subscribe.
func (ix *Index) Unsubscribe(id string) {
	ix.subsMu.Lock()
	delete(ix.subs, id)
	ix.subsMu.Unlock()
}

func (ix *Index) notify() {
	ix.subsMu.Lock()
	defer ix.subsMu.Unlock()

	for _, ch := range ix.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
