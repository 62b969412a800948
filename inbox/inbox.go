// Package inbox implements the server's per-recipient message queue:
// an append-only list of MessageInfo records, channel-filtered on
// poll, evicted wholesale when a recipient goes untouched for its
// time-to-idle.
package inbox

import (
	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/restapi"
)

// Inbox is the capability contract the server depends on. The default
// implementation is BasicInbox; alternate backends are permitted
// provided they honor the same operations and invariants, including
// the ordering guarantee documented on Poll.
type Inbox interface {
	// Add appends msg to recipient's inbox under channel, stamped with
	// the current time. It reports an overflow error if the
	// recipient's inbox is already at its configured capacity.
	Add(sender restapi.Sender, recipient crypto.PublicKey, channel string, msg restapi.Message) error

	// Poll removes and returns up to limit entries from recipient's
	// inbox whose channel matches exactly, in the order they were
	// added; non-matching entries are left in place. limit == nil
	// means "every matching entry". remaining is the number of
	// entries left in the inbox across all channels after this call.
	Poll(recipient crypto.PublicKey, channel string, limit *int) (messages []restapi.MessageInfo, remaining int)
}

// ErrInboxFull is returned by Add when the recipient's inbox has
// reached its configured per-recipient capacity.
var ErrInboxFull = inboxFullError{}

type inboxFullError struct{}

func (inboxFullError) Error() string { return "recipient inbox is full" }
