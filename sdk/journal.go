package sdk

// reader is anything an overlay can fall through to.
type reader interface {
	get(key string) ([]byte, error)
}

type storeReader struct{ s Store }

func (r storeReader) get(key string) ([]byte, error) { return r.s.Get(key) }

// overlay buffers the writes and logs of one (possibly nested) call. Nothing
// leaves it until merge or the chain commits the top-level overlay; dropping
// it is the rollback.
type overlay struct {
	parent reader
	writes map[string][]byte // nil value marks a delete
	logs   []string
}

func newOverlay(parent reader) *overlay {
	return &overlay{parent: parent, writes: make(map[string][]byte)}
}

func (o *overlay) get(key string) ([]byte, error) {
	if v, ok := o.writes[key]; ok {
		return v, nil
	}
	return o.parent.get(key)
}

func (o *overlay) set(key string, value []byte) {
	if value == nil {
		value = []byte{}
	}
	o.writes[key] = append([]byte(nil), value...)
}

func (o *overlay) del(key string) { o.writes[key] = nil }

func (o *overlay) log(msg string) { o.logs = append(o.logs, msg) }

// child opens a savepoint on top of o.
func (o *overlay) child() *overlay { return newOverlay(o) }

// mergeInto hands the child's effects to its parent overlay.
func (o *overlay) mergeInto(p *overlay) {
	for k, v := range o.writes {
		p.writes[k] = v
	}
	p.logs = append(p.logs, o.logs...)
}
