package model

import "sort"

// FindCycle returns the field names of one dependency cycle (first node
// repeated at the end), or nil when the parent→dependent graph is acyclic.
// Self-dependencies are ignored here; callers report them separately.
func FindCycle(deps []Dependency) []string {
	edges := make(map[string][]string)
	for _, dep := range deps {
		if dep.ParentField == dep.DependentField {
			continue
		}
		edges[dep.ParentField] = append(edges[dep.ParentField], dep.DependentField)
	}

	nodes := make([]string, 0, len(edges))
	for node := range edges {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(edges))
	var stack []string

	var visit func(string) []string
	visit = func(node string) []string {
		state[node] = visiting
		stack = append(stack, node)
		for _, next := range edges[node] {
			switch state[next] {
			case visiting:
				for i, name := range stack {
					if name == next {
						cycle := append([]string(nil), stack[i:]...)
						return append(cycle, next)
					}
				}
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[node] = done
		return nil
	}

	for _, node := range nodes {
		if state[node] != unvisited {
			continue
		}
		if cycle := visit(node); cycle != nil {
			return cycle
		}
	}
	return nil
}
