package sessions

import "context"

// Store holds session state. Implementations must provide read-after-write
// visibility: a Get after a successful Put or AppendConversation observes
// that write.
type Store interface {
	// Put creates the session or replaces it wholesale.
	Put(ctx context.Context, s *Session) error
	// Get returns a snapshot of the session, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// AppendConversation atomically assigns the next sequence number and
	// appends the exchange. Returns ErrNotFound if the session was reset.
	AppendConversation(ctx context.Context, id, question, answer string) (ConversationEntry, error)
	// Reset removes the session. Appends racing with a reset either land
	// before it or fail with ErrNotFound; a reset session never comes back.
	Reset(ctx context.Context, id string) error
}
