// Package dag schedules a pipeline's nodes into a valid execution order
// using Kahn's algorithm, breaking ties by declaration order so scheduling
// is deterministic for a given pipeline definition.
package dag

import (
	"fmt"

	"github.com/bhavana9635/aic-orchestrator/internal/pipeline"
)

// Sort returns nodes in a valid topological execution order: for every
// edge {From, To}, From appears before To. Nodes with no remaining
// dependencies are scheduled in declaration order (the order they appear
// in steps.Nodes), making the result deterministic.
//
// An edge referencing a node id absent from steps.Nodes is a malformed
// pipeline and returns a MalformedError. A pipeline whose edges form a
// cycle returns a CyclicError.
func Sort(steps pipeline.Steps) ([]string, error) {
	nodeIndex := make(map[string]int, len(steps.Nodes))
	order := make([]string, len(steps.Nodes))
	for i, n := range steps.Nodes {
		nodeIndex[n.ID] = i
		order[i] = n.ID
	}

	inDegree := make(map[string]int, len(order))
	adjacency := make(map[string][]string, len(order))
	for _, id := range order {
		inDegree[id] = 0
	}

	for _, e := range steps.Edges {
		if _, ok := nodeIndex[e.From]; !ok {
			return nil, &MalformedError{Edge: fmt.Sprintf("%s->%s", e.From, e.To), Detail: "from references unknown node"}
		}
		if _, ok := nodeIndex[e.To]; !ok {
			return nil, &MalformedError{Edge: fmt.Sprintf("%s->%s", e.From, e.To), Detail: "to references unknown node"}
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
		inDegree[e.To]++
	}

	queue := newDeclarationQueue(order)
	for _, id := range order {
		if inDegree[id] == 0 {
			queue.push(id)
		}
	}

	result := make([]string, 0, len(order))
	for queue.len() > 0 {
		id := queue.pop()
		result = append(result, id)

		neighbors := adjacency[id]
		for _, neighbor := range neighbors {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue.push(neighbor)
			}
		}
	}

	if len(result) != len(order) {
		return nil, &CyclicError{Scheduled: len(result), Total: len(order)}
	}
	return result, nil
}

// declarationQueue is a FIFO queue that, when multiple nodes become ready in
// the same round, always pops them in their original declaration order
// rather than the order ties happened to be discovered in.
type declarationQueue struct {
	rank map[string]int
	buf  []string
}

func newDeclarationQueue(order []string) *declarationQueue {
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	return &declarationQueue{rank: rank}
}

func (q *declarationQueue) push(id string) {
	// Insertion-sort by declaration rank; queues stay small in practice
	// (one pipeline's worth of nodes) so this is simpler than a heap.
	i := len(q.buf)
	q.buf = append(q.buf, id)
	for i > 0 && q.rank[q.buf[i-1]] > q.rank[q.buf[i]] {
		q.buf[i-1], q.buf[i] = q.buf[i], q.buf[i-1]
		i--
	}
}

func (q *declarationQueue) pop() string {
	id := q.buf[0]
	q.buf = q.buf[1:]
	return id
}

func (q *declarationQueue) len() int { return len(q.buf) }
