package core

// SignalConnection abstracts the messaging transport of one client.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend([]byte) error
	Close()
}
