package tui

import "github.com/mmcdole/sift/internal/query"

// ChannelObserver adapts coordinator subscriptions to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan query.State
}

// NewChannelObserver creates an observer buffering up to size states.
func NewChannelObserver(size int) *ChannelObserver {
	if size < 1 {
		size = 1
	}
	return &ChannelObserver{ch: make(chan query.State, size)}
}

// OnState sends the state to the channel. When the buffer is full the oldest
// state is dropped; every state is a full snapshot so only the newest matters.
func (o *ChannelObserver) OnState(state query.State) {
	for {
		select {
		case o.ch <- state:
			return
		default:
		}
		select {
		case <-o.ch:
		default:
		}
	}
}

// States returns the receive side of the channel
func (o *ChannelObserver) States() <-chan query.State {
	return o.ch
}
