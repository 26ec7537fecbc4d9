package realtime

import "sync"

// Registry is the process-wide table of live connections keyed by user
// id. At most one connection is registered per user at any instant.
type Registry struct {
	conns sync.Map // int64 -> *Conn
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds c as the authoritative connection for its user. The
// previously registered connection for the same user, if any, is
// returned; it is no longer reachable through the registry and the
// caller must close it.
func (r *Registry) Register(c *Conn) *Conn {
	prev, ok := r.conns.Swap(c.UserID, c)
	if !ok {
		return nil
	}
	return prev.(*Conn)
}

// Unregister removes the binding only while c is still the registered
// connection for its user, so a slow teardown cannot evict a newer
// session.
func (r *Registry) Unregister(c *Conn) {
	r.conns.CompareAndDelete(c.UserID, c)
}

// Lookup returns the live connection for userID. A connection whose
// transport has already closed counts as absent and is dropped from
// the table.
func (r *Registry) Lookup(userID int64) (*Conn, bool) {
	v, ok := r.conns.Load(userID)
	if !ok {
		return nil, false
	}
	c := v.(*Conn)
	if c.Closed() {
		r.conns.CompareAndDelete(userID, c)
		return nil, false
	}
	return c, true
}

// Snapshot returns the ids of all currently connected users.
func (r *Registry) Snapshot() []int64 {
	var ids []int64
	r.conns.Range(func(key, value any) bool {
		if !value.(*Conn).Closed() {
			ids = append(ids, key.(int64))
		}
		return true
	})
	return ids
}

func (r *Registry) IsOnline(userID int64) bool {
	_, ok := r.Lookup(userID)
	return ok
}
