package graph

// conditionalEdge routes at run time by inspecting the post-merge state.
// Targets optionally declares the router's codomain; when present, a
// routed name outside it is rejected even if the node exists, and the
// compiler can include the targets in reachability analysis.
type conditionalEdge struct {
	from    string
	router  RouterFunc
	targets []string
}

func (e *conditionalEdge) allows(target string) bool {
	if len(e.targets) == 0 {
		return true
	}
	for _, t := range e.targets {
		if t == target {
			return true
		}
	}
	return false
}
