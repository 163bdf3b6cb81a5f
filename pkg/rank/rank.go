// Package rank provides the shared taxonomic rank-ordering table used by
// the domain entities (C2) to enforce infraspecific slot ordering and by
// the query evaluator (C5) to lower "infraspecific_rank" derivations.
package rank

// Rank is a taxonomic level, ordered low (family) to high (subforma).
type Rank string

// Recognized rank values, in ascending taxonomic order.
const (
	Familia    Rank = "familia"
	Subfamilia Rank = "subfamilia"
	Tribus     Rank = "tribus"
	Subtribus  Rank = "subtribus"
	Genus      Rank = "genus"
	Subgenus   Rank = "subgenus"
	Species    Rank = "species"
	Subspecies Rank = "subsp."
	Varietas   Rank = "var."
	Subvarietas Rank = "subvar."
	Forma      Rank = "f."
	Subforma   Rank = "subf."
	Cultivar   Rank = "cv."
	None       Rank = ""
)

// order assigns the sort weight from spec.md §4.2's rank comparison table.
// "None" sorts at 70, between species(60) and subsp.(80). "cv." has no
// weight here; it is excluded from infraspecific_rank derivation entirely
// and callers must filter it out before calling Compare/Less.
var order = map[Rank]int{
	Familia:     1,
	Subfamilia:  10,
	Tribus:      20,
	Subtribus:   30,
	Genus:       40,
	Subgenus:    50,
	Species:     60,
	None:        70,
	Subspecies:  80,
	Varietas:    90,
	Subvarietas: 100,
	Forma:       110,
	Subforma:    120,
}

// InfraspecificOrder lists the five ranks an infraspecific slot may hold,
// in the monotonically descending taxonomic order invariant 4 requires.
var InfraspecificOrder = []Rank{Subspecies, Varietas, Subvarietas, Forma, Subforma}

// Weight returns the sort weight of r. Unknown ranks (including "cv.")
// return -1 so callers can detect and special-case them.
func Weight(r Rank) int {
	w, ok := order[r]
	if !ok {
		return -1
	}
	return w
}

// Less reports whether a sorts strictly before b in taxonomic order.
func Less(a, b Rank) bool {
	return Weight(a) < Weight(b)
}

// IsInfraspecific reports whether r is one of the five infraspecific slot
// ranks (subsp., var., subvar., f., subf.) recognized by invariant 4.
func IsInfraspecific(r Rank) bool {
	for _, v := range InfraspecificOrder {
		if v == r {
			return true
		}
	}
	return false
}

// SlotIndex returns the 1-based position of r in InfraspecificOrder (1 for
// subsp. through 5 for subf.), or 0 if r is not infraspecific. It is a
// rank position, not one of a species' four slot numbers; the invariant 4
// order check in pkg/taxon compares Weight values instead.
func SlotIndex(r Rank) int {
	for i, v := range InfraspecificOrder {
		if v == r {
			return i + 1
		}
	}
	return 0
}
