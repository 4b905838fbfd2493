package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"github.com/cfphilippson/intune-export/internal/intune"
)

// WriteGraphDOT renders the run's policies and their resolved targets as
// a directed graph: one box node per policy, one node per distinct
// target label, one edge per assignment.
func (w *Writer) WriteGraphDOT(policies []intune.Policy) error {
	const graphName = "assignments"

	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return fmt.Errorf("build assignment graph: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return fmt.Errorf("build assignment graph: %w", err)
	}

	targets := make(map[string]bool)
	for _, p := range policies {
		policyNode := strconv.Quote("policy/" + p.ID)
		err := g.AddNode(graphName, policyNode, map[string]string{
			"label": strconv.Quote(p.DisplayName),
			"shape": "box",
		})
		if err != nil {
			return fmt.Errorf("add policy node %s: %w", p.ID, err)
		}

		for _, a := range p.Assignments {
			targetNode := strconv.Quote(a.TargetResolved)
			if !targets[targetNode] {
				if err := g.AddNode(graphName, targetNode, nil); err != nil {
					return fmt.Errorf("add target node %q: %w", a.TargetResolved, err)
				}
				targets[targetNode] = true
			}
			if err := g.AddEdge(policyNode, targetNode, true, nil); err != nil {
				return fmt.Errorf("add edge %s -> %q: %w", p.ID, a.TargetResolved, err)
			}
		}
	}

	path := filepath.Join(w.dir, graphDOTName)
	if err := os.WriteFile(path, []byte(g.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
