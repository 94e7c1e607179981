// Package kvstore provides the string-keyed JSON document store shared by
// the ledger and the chat session store. The contract mirrors browser local
// storage: synchronous get/set/remove, and failures are swallowed — a read
// of a missing or corrupted document behaves as "absent", a failed write is
// a silent no-op.
package kvstore

// Well-known document keys. The names are part of the stored layout and must
// stay byte-compatible with existing data.
const (
	KeyUsers       = "sai_users"
	KeyCurrentUser = "sai_user"
	KeyCredits     = "sai_credits"
	KeyChats       = "sai_chats"
	KeyAPIKey      = "sai_api_key"
)

// Store is the shared key-value abstraction. Get deserializes the document
// stored under key into dest and reports whether a usable value was found;
// when it returns false dest is left untouched, so callers pre-fill it with
// their default. Set and Remove never report errors.
type Store interface {
	Get(key string, dest any) bool
	Set(key string, value any)
	Remove(key string)
}
