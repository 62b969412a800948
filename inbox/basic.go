package inbox

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/restapi"
)

const (
	// DefaultTimeToIdle evicts a recipient's entire inbox once it has
	// received no adds and no polls for this long.
	DefaultTimeToIdle = 24 * time.Hour
	// DefaultCapacity bounds the number of distinct recipient inboxes
	// tracked at once (not the number of messages per recipient).
	DefaultCapacity = 4096
	// DefaultMaxPerRecipient bounds the number of undelivered messages
	// a single recipient may accumulate; Add reports ErrInboxFull past
	// this point. NewBasicInbox uses it when passed 0; a negative value
	// there means unbounded.
	DefaultMaxPerRecipient = 256
)

type recipientBox struct {
	mu      sync.Mutex
	entries []restapi.MessageInfo
}

// BasicInbox is the default Inbox: an expirable LRU cache keyed by
// recipient public key, each value a mutex-guarded append-only slice.
type BasicInbox struct {
	createMu        sync.Mutex
	cache           *expirable.LRU[[33]byte, *recipientBox]
	maxPerRecipient int
}

// NewBasicInbox builds an inbox with the given tracked-recipient
// capacity, time-to-idle, and per-recipient message bound. Pass 0 for any
// of capacity/ttl to use the package defaults; pass a negative
// maxPerRecipient for an unbounded inbox.
func NewBasicInbox(capacity int, ttl time.Duration, maxPerRecipient int) *BasicInbox {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTimeToIdle
	}
	if maxPerRecipient == 0 {
		maxPerRecipient = DefaultMaxPerRecipient
	}

	return &BasicInbox{
		cache:           expirable.NewLRU[[33]byte, *recipientBox](capacity, nil, ttl),
		maxPerRecipient: maxPerRecipient,
	}
}

func (b *BasicInbox) boxFor(recipient crypto.PublicKey) *recipientBox {
	key := recipient.Bytes()

	// Get/Peek never touch ExpiresAt in expirable.LRU; only Add does.
	// Re-Add an existing box to renew its time-to-idle.
	if box, ok := b.cache.Peek(key); ok {
		b.cache.Add(key, box)
		return box
	}

	b.createMu.Lock()
	defer b.createMu.Unlock()

	if box, ok := b.cache.Peek(key); ok {
		b.cache.Add(key, box)
		return box
	}

	box := &recipientBox{}
	b.cache.Add(key, box)
	return box
}

func (b *BasicInbox) Add(sender restapi.Sender, recipient crypto.PublicKey, channel string, msg restapi.Message) error {
	box := b.boxFor(recipient)

	box.mu.Lock()
	defer box.mu.Unlock()

	if b.maxPerRecipient > 0 && len(box.entries) >= b.maxPerRecipient {
		return ErrInboxFull
	}

	box.entries = append(box.entries, restapi.NewMessageInfo(sender, channel, msg))
	return nil
}

func (b *BasicInbox) Poll(recipient crypto.PublicKey, channel string, limit *int) ([]restapi.MessageInfo, int) {
	key := recipient.Bytes()

	box, ok := b.cache.Peek(key)
	if !ok {
		return nil, 0
	}
	b.cache.Add(key, box) // renew time-to-idle

	box.mu.Lock()
	defer box.mu.Unlock()

	var matched []restapi.MessageInfo
	var kept []restapi.MessageInfo

	for _, entry := range box.entries {
		if entry.Channel != channel {
			kept = append(kept, entry)
			continue
		}
		if limit != nil && len(matched) >= *limit {
			kept = append(kept, entry)
			continue
		}
		matched = append(matched, entry)
	}

	box.entries = kept
	return matched, len(box.entries)
}

var _ Inbox = (*BasicInbox)(nil)
