// Package umi collapses unique molecular identifiers (UMIs) by sequence
// similarity. Within one (cell, gene) group, UMIs within a small Hamming
// distance of each other almost always derive from the same molecule via
// PCR or sequencing error; clustering them yields molecule counts instead
// of read counts.
package umi

import (
	"sort"

	"github.com/scbio/sc/util"
)

// UMI is one distinct UMI sequence with its observed read count.
type UMI struct {
	Seq   string
	Count int
}

// Group is one cluster of UMIs judged to originate from a single molecule.
type Group struct {
	// Representative is the member with the strictly greatest read count;
	// ties are broken by lexicographic order.
	Representative string
	Members        []UMI
	// TotalCount is the summed read count of all members.
	TotalCount int
}

// Graph is an undirected graph over distinct UMI sequences. Node weight is
// the summed read count for that sequence; edges connect pairs within the
// Hamming distance threshold.
type Graph struct {
	counts map[string]int
	edges  map[string][]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{counts: map[string]int{}, edges: map[string][]string{}}
}

// Add inserts a UMI observation, merging counts for repeated sequences.
func (g *Graph) Add(seq string, count int) {
	g.counts[seq] += count
}

// Count returns the accumulated read count for seq.
func (g *Graph) Count(seq string) int { return g.counts[seq] }

// BuildEdges connects every pair of nodes within maxDist mismatches.
// The all-pairs build is O(n^2) in the number of distinct UMIs, which is
// acceptable for per-(cell,gene) group sizes.
func (g *Graph) BuildEdges(maxDist int) {
	seqs := g.sortedSeqs()
	for i := 0; i < len(seqs); i++ {
		for j := i + 1; j < len(seqs); j++ {
			if util.HammingWithin(seqs[i], seqs[j], maxDist) {
				g.edges[seqs[i]] = append(g.edges[seqs[i]], seqs[j])
				g.edges[seqs[j]] = append(g.edges[seqs[j]], seqs[i])
			}
		}
	}
}

// Components returns the connected components of the graph. Components and
// their members come back in deterministic (lexicographic seed) order.
func (g *Graph) Components() [][]string {
	var components [][]string
	visited := make(map[string]bool, len(g.counts))
	for _, seed := range g.sortedSeqs() {
		if visited[seed] {
			continue
		}
		var component []string
		stack := []string{seed}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			component = append(component, cur)
			stack = append(stack, g.edges[cur]...)
		}
		components = append(components, component)
	}
	return components
}

func (g *Graph) sortedSeqs() []string {
	seqs := make([]string, 0, len(g.counts))
	for seq := range g.counts {
		seqs = append(seqs, seq)
	}
	sort.Strings(seqs)
	return seqs
}

// Dedup partitions umis into groups of sequences within maxDist of one
// another, transitively (connected components of the adjacency graph; the
// stricter umi-tools directional count-ratio rule is deliberately not
// applied). maxDist = 0 groups by string identity without building a graph.
// The sum of group TotalCounts always equals the sum of input counts.
func Dedup(umis []UMI, maxDist int) []Group {
	if len(umis) == 0 {
		return nil
	}
	if maxDist == 0 {
		return dedupExact(umis)
	}

	g := NewGraph()
	for _, u := range umis {
		g.Add(u.Seq, u.Count)
	}
	return g.Dedup(maxDist)
}

// Dedup clusters the accumulated UMIs into groups. Grouping follows the
// same rules as the package-level Dedup. The graph's edge set is rebuilt
// on each call.
func (g *Graph) Dedup(maxDist int) []Group {
	if len(g.counts) == 0 {
		return nil
	}
	if maxDist == 0 {
		groups := make([]Group, 0, len(g.counts))
		for _, seq := range g.sortedSeqs() {
			groups = append(groups, Group{
				Representative: seq,
				Members:        []UMI{{Seq: seq, Count: g.counts[seq]}},
				TotalCount:     g.counts[seq],
			})
		}
		return groups
	}
	g.edges = map[string][]string{}
	g.BuildEdges(maxDist)

	var groups []Group
	for _, component := range g.Components() {
		group := Group{}
		for _, seq := range component {
			u := UMI{Seq: seq, Count: g.Count(seq)}
			group.Members = append(group.Members, u)
			group.TotalCount += u.Count
		}
		group.Representative = representative(group.Members)
		groups = append(groups, group)
	}
	return groups
}

func dedupExact(umis []UMI) []Group {
	counts := map[string]int{}
	var order []string
	for _, u := range umis {
		if _, ok := counts[u.Seq]; !ok {
			order = append(order, u.Seq)
		}
		counts[u.Seq] += u.Count
	}
	groups := make([]Group, 0, len(order))
	for _, seq := range order {
		groups = append(groups, Group{
			Representative: seq,
			Members:        []UMI{{Seq: seq, Count: counts[seq]}},
			TotalCount:     counts[seq],
		})
	}
	return groups
}

// representative picks the member with the greatest count, breaking ties by
// lexicographic order.
func representative(members []UMI) string {
	best := members[0]
	for _, u := range members[1:] {
		if u.Count > best.Count || (u.Count == best.Count && u.Seq < best.Seq) {
			best = u
		}
	}
	return best.Seq
}
