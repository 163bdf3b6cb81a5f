package graph

import (
	"context"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/gn"
)

// GeographyTree is the contract the geography tree operations of §4.3 are
// built on. Implementations live in internal/io/graph and use recursive
// CTEs for Ancestors/Descendants, as the spec requires (§4.3).
type GeographyTree interface {
	// Parent returns the id's parent, or nil if it is a root.
	Parent(ctx context.Context, id string) (*string, error)

	// Children returns the ids of id's direct children.
	Children(ctx context.Context, id string) ([]string, error)

	// Ancestors returns the ids of every node strictly above id, root
	// first, via a recursive CTE traversal.
	Ancestors(ctx context.Context, id string) ([]string, error)

	// Descendants returns the ids of every node strictly below id via a
	// recursive CTE traversal.
	Descendants(ctx context.Context, id string) ([]string, error)

	// Area returns the node's approx_area (§3).
	Area(ctx context.Context, id string) (float64, error)

	// SpeciesInGeography returns species ids whose distribution intersects
	// {id} ∪ ancestors(id) ∪ descendants(id).
	SpeciesInGeography(ctx context.Context, id string) ([]string, error)
}

// PathFromRoot returns the list from root to id inclusive (§4.3).
func PathFromRoot(ctx context.Context, t GeographyTree, id string) ([]string, error) {
	ancestors, err := t.Ancestors(ctx, id)
	if err != nil {
		return nil, err
	}
	return append(append([]string{}, ancestors...), id), nil
}

// Consolidate repeatedly replaces a complete set of siblings by their
// parent, returning the reduced set (§4.3). The input set is treated as a
// set of ids; order of the result is not significant.
func Consolidate(ctx context.Context, t GeographyTree, ids []string) ([]string, error) {
	set := toSet(ids)

	for {
		byParent := map[string][]string{}
		roots := map[string]bool{}

		for id := range set {
			parent, err := t.Parent(ctx, id)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				roots[id] = true
				continue
			}
			byParent[*parent] = append(byParent[*parent], id)
		}

		changed := false
		for parent, children := range byParent {
			siblings, err := t.Children(ctx, parent)
			if err != nil {
				return nil, err
			}
			if sameSet(children, siblings) {
				for _, c := range children {
					delete(set, c)
				}
				set[parent] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return fromSet(set), nil
}

// ConsolidateByPercentArea traverses the tree top-down starting from
// roots reachable from ids, stopping and including a node when either it
// is itself in the input set, or it has at least allowableChildren
// children and the summed area of the input nodes under it exceeds
// percent% of its own area (§4.3). Otherwise it recurses into the node's children.
func ConsolidateByPercentArea(
	ctx context.Context,
	t GeographyTree,
	ids []string,
	percent float64,
	allowableChildren int,
) ([]string, error) {
	inputSet := toSet(ids)

	// Determine the distinct set of root ancestors to start traversal
	// from, so every requested node is reachable.
	rootSet := map[string]bool{}
	for id := range inputSet {
		path, err := PathFromRoot(ctx, t, id)
		if err != nil {
			return nil, err
		}
		if len(path) > 0 {
			rootSet[path[0]] = true
		}
	}

	var result []string
	visited := map[string]bool{}
	for root := range rootSet {
		res, err := consolidateNode(ctx, t, root, inputSet, percent, allowableChildren, visited)
		if err != nil {
			return nil, err
		}
		result = append(result, res...)
	}
	return result, nil
}

func consolidateNode(
	ctx context.Context,
	t GeographyTree,
	id string,
	inputSet map[string]bool,
	percent float64,
	allowableChildren int,
	visited map[string]bool,
) ([]string, error) {
	if visited[id] {
		return nil, nil
	}
	visited[id] = true

	if inputSet[id] {
		return []string{id}, nil
	}

	children, err := t.Children(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(children) >= allowableChildren && allowableChildren > 0 {
		leafArea, err := sumLeafAreas(ctx, t, id, inputSet)
		if err != nil {
			return nil, err
		}
		ownArea, err := t.Area(ctx, id)
		if err != nil {
			return nil, err
		}
		if ownArea > 0 && leafArea/ownArea*100 > percent {
			return []string{id}, nil
		}
	}
	if len(children) == 0 {
		return nil, nil
	}

	var result []string
	for _, c := range children {
		res, err := consolidateNode(ctx, t, c, inputSet, percent, allowableChildren, visited)
		if err != nil {
			return nil, err
		}
		result = append(result, res...)
	}
	return result, nil
}

// sumLeafAreas sums the areas of the input-set nodes at or under id; a
// node outside the input set with no children adds nothing.
func sumLeafAreas(ctx context.Context, t GeographyTree, id string, inputSet map[string]bool) (float64, error) {
	if inputSet[id] {
		return t.Area(ctx, id)
	}
	children, err := t.Children(ctx, id)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, c := range children {
		sub, err := sumLeafAreas(ctx, t, c, inputSet)
		if err != nil {
			return 0, err
		}
		total += sub
	}
	return total, nil
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func fromSet(s map[string]bool) []string {
	res := make([]string, 0, len(s))
	for id := range s {
		res = append(res, id)
	}
	return res
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := toSet(a)
	for _, id := range b {
		if !sa[id] {
			return false
		}
	}
	return true
}

// ErrGeographyCycle reports a cycle detected while walking the tree,
// which should never happen against a well-formed geography table.
// internal/io/graph returns it when its recursive-CTE Ancestors walk is
// cut short by the query's own cycle guard.
var ErrGeographyCycle = &gn.Error{
	Code: errcode.GeographyCycleError,
	Msg:  "geography tree traversal detected a cycle",
}
