// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package session

import (
	"sync"

	"github.com/wneessen/motoguide/internal/address"
)

// EventType identifies what happened in a session.
type EventType int

const (
	// EventAddressChanged is emitted when a new address is announced.
	EventAddressChanged EventType = iota
	// EventLogEntryAppended is emitted for every history entry.
	EventLogEntryAppended
)

func (t EventType) String() string {
	switch t {
	case EventAddressChanged:
		return "address_changed"
	case EventLogEntryAppended:
		return "log_entry_appended"
	default:
		return "unknown"
	}
}

// Event notifies subscribers about session changes. Entry is only set for
// EventLogEntryAppended.
type Event struct {
	Type    EventType
	Address address.Address
	Entry   LogEntry
}

// Subscribe returns a channel receiving session events and a function that ends the
// subscription. Events are dropped for subscribers whose buffer is full.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	events := make(chan Event, buffer)
	s.subMu.Lock()
	s.subscribers[events] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, events)
			s.subMu.Unlock()
			close(events)
		})
	}
	return events, unsub
}

func (s *Session) emit(event Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.logger.Warn("subscriber buffer full, dropping session event", "event", event.Type.String())
		}
	}
}
