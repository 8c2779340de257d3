// ABOUTME: Startup switch choosing which top-level screen graph is mounted
// ABOUTME: One-shot by default; live gates follow later login/logout changes

package gate

// Graph identifies one of the two disjoint screen graphs
type Graph int

const (
	GraphPending Graph = iota // session not resolved yet
	GraphAuth                 // login / register
	GraphMain                 // home / appointments / profile
)

// String returns the graph name for logs
func (g Graph) String() string {
	switch g {
	case GraphAuth:
		return "auth"
	case GraphMain:
		return "main"
	default:
		return "pending"
	}
}

// Gate mounts a graph from the startup session snapshot
type Gate struct {
	live  bool
	graph Graph
}

// New creates an unmounted gate. A live gate can be re-evaluated after
// mount through Regate; a one-shot gate keeps its first decision.
func New(live bool) *Gate {
	return &Gate{live: live}
}

// Live reports whether the gate follows runtime session changes
func (g *Gate) Live() bool {
	return g.live
}

// Current returns the mounted graph
func (g *Gate) Current() Graph {
	return g.graph
}

// Mounted reports whether the startup decision has been made
func (g *Gate) Mounted() bool {
	return g.graph != GraphPending
}

// Mount makes the startup decision. Only the first call has an effect.
func (g *Gate) Mount(hasSession bool) Graph {
	if g.graph != GraphPending {
		return g.graph
	}
	g.graph = graphFor(hasSession)
	return g.graph
}

// Regate switches graphs after a runtime session change.
// It returns false when the gate is one-shot, not yet mounted, or already
// showing the right graph.
func (g *Gate) Regate(authenticated bool) (Graph, bool) {
	if !g.live || g.graph == GraphPending {
		return g.graph, false
	}
	next := graphFor(authenticated)
	if next == g.graph {
		return g.graph, false
	}
	g.graph = next
	return g.graph, true
}

func graphFor(hasSession bool) Graph {
	if hasSession {
		return GraphMain
	}
	return GraphAuth
}
