package domain

import "strings"

// Scope selects the partition a synced collection is complete for.
//
// A scoped sync prunes every cached row of that partition the server did not
// return. An unscoped sync only upserts; use it for batches that are known to
// be partial, such as pages after the first.
type Scope struct {
	key    string
	scoped bool
}

// Scoped returns a scope limited to the partition identified by key.
func Scoped(key string) Scope {
	return Scope{key: key, scoped: true}
}

// Unscoped returns the scope that never prunes.
func Unscoped() Scope {
	return Scope{}
}

// Key returns the partition key and whether the scope prunes at all.
func (s Scope) Key() (string, bool) {
	return s.key, s.scoped
}

// IsScoped reports whether the scope prunes.
func (s Scope) IsScoped() bool {
	return s.scoped
}

func (s Scope) String() string {
	if !s.scoped {
		return "unscoped"
	}
	return "scoped(" + s.key + ")"
}

// keySep joins the parts of compound keys. It never occurs in ids issued by
// the server.
const keySep = "\x1f"

// ThreadKey encodes the inbox thread between userID and partnerID as a scope key.
func ThreadKey(userID, partnerID string) string {
	return userID + keySep + partnerID
}

// SplitThreadKey reverses ThreadKey.
func SplitThreadKey(key string) (userID, partnerID string, ok bool) {
	userID, partnerID, ok = strings.Cut(key, keySep)
	return userID, partnerID, ok
}
