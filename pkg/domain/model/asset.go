package model

// DismissNoticeScript is the asset handle of the client script that reports
// dismissals back to the server.
const DismissNoticeScript = "stellarwp-dismiss-notice"

// AssetQueue collects script handles for a single page assembly. The zero
// value is ready to use. It is not safe for concurrent use.
type AssetQueue struct {
	handles []string
	seen    map[string]struct{}
}

// Enqueue adds handle once. It returns true the first time a handle is added.
func (q *AssetQueue) Enqueue(handle string) bool {
	if q.seen == nil {
		q.seen = make(map[string]struct{})
	}
	if _, ok := q.seen[handle]; ok {
		return false
	}
	q.seen[handle] = struct{}{}
	q.handles = append(q.handles, handle)
	return true
}

// Has reports whether handle was enqueued
func (q *AssetQueue) Has(handle string) bool {
	_, ok := q.seen[handle]
	return ok
}

// Handles returns enqueued handles in insertion order
func (q *AssetQueue) Handles() []string {
	out := make([]string, len(q.handles))
	copy(out, q.handles)
	return out
}
