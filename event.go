package fsmkernel

// EventID is a discriminator drawn from a closed enumeration known at build
// time. Events carry no payload: two Events are equal iff their IDs are
// equal, and an Event is freely copyable.
type EventID string

// Event is the unit the runtime delivers to workers. It is a bare
// discriminator; event parameters/payloads are an explicit non-goal.
type Event struct {
	ID EventID
}

func (e Event) String() string {
	return string(e.ID)
}

// EventCatalog assigns a stable numeric code to each member of a closed set
// of EventIDs, in the order they were declared. It exists to support the
// command surface's "eN: broadcast the event whose numeric id is N" token,
// which needs a way to go from a typed integer back to the symbolic event a
// workload's FSM tables actually match on.
type EventCatalog struct {
	ids   []EventID
	index map[EventID]int
}

// NewEventCatalog builds a catalog assigning codes 0..len(ids)-1 in order.
func NewEventCatalog(ids ...EventID) *EventCatalog {
	c := &EventCatalog{
		ids:   append([]EventID(nil), ids...),
		index: make(map[EventID]int, len(ids)),
	}
	for i, id := range c.ids {
		c.index[id] = i
	}
	return c
}

// ByNumber returns the EventID registered under numeric code n.
func (c *EventCatalog) ByNumber(n int) (EventID, bool) {
	if c == nil || n < 0 || n >= len(c.ids) {
		return "", false
	}
	return c.ids[n], true
}

// Number returns the numeric code assigned to id.
func (c *EventCatalog) Number(id EventID) (int, bool) {
	if c == nil {
		return 0, false
	}
	n, ok := c.index[id]
	return n, ok
}

// IDs returns the catalog's members in declaration order.
func (c *EventCatalog) IDs() []EventID {
	if c == nil {
		return nil
	}
	return append([]EventID(nil), c.ids...)
}
