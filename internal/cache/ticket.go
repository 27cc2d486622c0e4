package cache

// Ticket identifies a dependency source an entry can subscribe to.
// Tickets are fixed at finalize; contexts only own their serial counters.
type Ticket int

const (
	// TicketNothing never changes; entries depending on it alone are
	// computed once per context.
	TicketNothing Ticket = iota

	// TicketConfiguration changes when the position block (or the whole
	// discrete state) of a context is written.
	TicketConfiguration

	// TicketVelocities changes when the velocity block is written.
	TicketVelocities

	// TicketKinematics is downstream of configuration and velocities;
	// it exists so entries can subscribe to "any kinematic input moved"
	// without naming each source.
	TicketKinematics

	numTickets
)

func (t Ticket) String() string {
	switch t {
	case TicketNothing:
		return "nothing"
	case TicketConfiguration:
		return "configuration"
	case TicketVelocities:
		return "velocities"
	case TicketKinematics:
		return "kinematics"
	default:
		return "unknown"
	}
}

// Graph records which tickets are invalidated by which sources. It is
// built once at finalize, owned by the host, and read-shared by every
// store realized from it.
type Graph struct {
	downstream [numTickets][]Ticket
}

func NewGraph() *Graph {
	return &Graph{}
}

// Subscribe marks dependent as stale whenever source changes. The graph
// for a host is shallow and acyclic; Subscribe does not defend against
// cycles beyond the visited set in fanout.
func (g *Graph) Subscribe(dependent, source Ticket) {
	g.downstream[source] = append(g.downstream[source], dependent)
}

// fanout visits t and every ticket transitively downstream of it.
func (g *Graph) fanout(t Ticket, visit func(Ticket)) {
	var seen [numTickets]bool
	stack := []Ticket{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		visit(cur)
		stack = append(stack, g.downstream[cur]...)
	}
}
