package taxon

import (
	"fmt"
	"strings"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/rank"
)

// HybridAttribute pairs a pure in-memory reader with a SQL expression
// builder for the same derived value, so the Query Evaluator (C5) can
// filter and aggregate on it exactly as it would a stored column (§4.2,
// §9 "ORM-backed properties with dual property/expression forms").
type HybridAttribute[T any] interface {
	// Read computes the attribute from an in-memory record.
	Read(record T) any

	// Expr returns a SQL expression fragment equivalent to Read, qualified
	// against the given table alias, for embedding by the evaluator.
	Expr(alias string) string
}

// --- cites (Family/Genus/Species inheritance chain with local override) ---

// FamilyCites returns f's own cites value (a Family has no parent to
// inherit from).
func FamilyCites(f *Family) *CitesAppendix {
	return f.Cites
}

// familyCitesExpr is the SQL expression for Family.cites.
func familyCitesExpr(alias string) string {
	return fmt.Sprintf("%s.cites", alias)
}

// GenusCites resolves `_cites ?? family.cites` (§4.2). g.Family must be
// populated for the fallback to be available.
func GenusCites(g *Genus) *CitesAppendix {
	if g.CitesOverride != nil {
		return g.CitesOverride
	}
	if g.Family != nil {
		return g.Family.Cites
	}
	return nil
}

// genusCitesExpr is the SQL expression for the genus cites hybrid:
// COALESCE(genus.cites_override, family.cites).
func genusCitesExpr(genusAlias, familyAlias string) string {
	return fmt.Sprintf("COALESCE(%s.cites_override, %s.cites)", genusAlias, familyAlias)
}

// SpeciesCites resolves `_cites ?? genus._cites ?? family.cites` (§4.2).
// sp.Genus (and its Family) must be populated for the fallback chain to be
// available.
func SpeciesCites(sp *Species) *CitesAppendix {
	if sp.CitesOverride != nil {
		return sp.CitesOverride
	}
	if sp.Genus != nil {
		return GenusCites(sp.Genus)
	}
	return nil
}

// speciesCitesExpr is the SQL expression for the species cites hybrid:
// COALESCE(species.cites_override, genus.cites_override, family.cites).
func speciesCitesExpr(speciesAlias, genusAlias, familyAlias string) string {
	return fmt.Sprintf(
		"COALESCE(%s.cites_override, %s.cites_override, %s.cites)",
		speciesAlias, genusAlias, familyAlias,
	)
}

// SpeciesCitesHybrid implements HybridAttribute[*Species] for the cites
// chain, given the table aliases the evaluator has assigned to species,
// genus, and family in the current query.
type SpeciesCitesHybrid struct {
	SpeciesAlias, GenusAlias, FamilyAlias string
}

func (h SpeciesCitesHybrid) Read(sp *Species) any {
	return SpeciesCites(sp)
}

func (h SpeciesCitesHybrid) Expr(_ string) string {
	return speciesCitesExpr(h.SpeciesAlias, h.GenusAlias, h.FamilyAlias)
}

// --- active (no accessions => true; else any accession has a plant with
// quantity > 0) ---

// SpeciesActive resolves the `active` hybrid attribute (§4.2, testable
// property 8).
func SpeciesActive(sp *Species) bool {
	if len(sp.Accessions) == 0 {
		return true
	}
	for _, acc := range sp.Accessions {
		for _, p := range acc.Plants {
			if p.Quantity > 0 {
				return true
			}
		}
	}
	return false
}

// SpeciesActiveHybrid implements HybridAttribute[*Species] for `active`.
// The expression form relies on a correlated EXISTS against the external
// Accession/Plant subsystem (§6), whose table names are supplied by the
// caller since the core does not own those tables.
type SpeciesActiveHybrid struct {
	SpeciesAlias      string
	AccessionTable    string // e.g. "accession"
	PlantTable        string // e.g. "plant"
	AccessionFK       string // FK column on AccessionTable referencing species
	AccessionPlantFK  string // FK column on PlantTable referencing AccessionTable
}

func (h SpeciesActiveHybrid) Read(sp *Species) any {
	return SpeciesActive(sp)
}

func (h SpeciesActiveHybrid) Expr(_ string) string {
	return fmt.Sprintf(
		`NOT EXISTS (SELECT 1 FROM %[1]s WHERE %[1]s.%[3]s = %[2]s.id)
		 OR EXISTS (
		   SELECT 1 FROM %[1]s
		   JOIN %[4]s ON %[4]s.%[5]s = %[1]s.id
		   WHERE %[1]s.%[3]s = %[2]s.id AND %[4]s.quantity > 0
		 )`,
		h.AccessionTable, h.SpeciesAlias, h.AccessionFK, h.PlantTable, h.AccessionPlantFK,
	)
}

// --- family_name (genus.family.epithet) ---

// SpeciesFamilyName resolves `family_name` (§4.2). sp.Genus.Family must be
// populated.
func SpeciesFamilyName(sp *Species) string {
	if sp.Genus != nil && sp.Genus.Family != nil {
		return sp.Genus.Family.Epithet
	}
	return ""
}

// SpeciesFamilyNameHybrid implements HybridAttribute[*Species] for
// `family_name`.
type SpeciesFamilyNameHybrid struct {
	FamilyAlias string
}

func (h SpeciesFamilyNameHybrid) Read(sp *Species) any {
	return SpeciesFamilyName(sp)
}

func (h SpeciesFamilyNameHybrid) Expr(_ string) string {
	return fmt.Sprintf("%s.epithet", h.FamilyAlias)
}

// --- infraspecific_rank / _epithet / _author (deepest occupied slot) ---

// deepestOccupiedSlot returns the index (0..3) of the last occupied slot,
// or -1 if none are occupied. "cv." slots have no representation among
// InfraspecificSlot's ranks in this port (cultivar naming is carried in
// CultivarEpithet/CvGroup instead, per SPEC_FULL.md's Open Question
// decision), so every occupied slot here already qualifies.
func deepestOccupiedSlot(sp *Species) int {
	last := -1
	for i, s := range sp.Infraspecific {
		if s.Occupied() {
			last = i
		}
	}
	return last
}

// SpeciesInfraspecificRank resolves `infraspecific_rank` (§4.2).
func SpeciesInfraspecificRank(sp *Species) InfraspecificRank {
	i := deepestOccupiedSlot(sp)
	if i < 0 {
		return InfraspecificRankNone
	}
	return sp.Infraspecific[i].Rank
}

// SpeciesInfraspecificEpithet resolves `infraspecific_epithet` (§4.2).
func SpeciesInfraspecificEpithet(sp *Species) string {
	i := deepestOccupiedSlot(sp)
	if i < 0 {
		return ""
	}
	return sp.Infraspecific[i].Epithet
}

// SpeciesInfraspecificAuthor resolves `infraspecific_author` (§4.2).
func SpeciesInfraspecificAuthor(sp *Species) string {
	i := deepestOccupiedSlot(sp)
	if i < 0 {
		return ""
	}
	return sp.Infraspecific[i].Author
}

// --- infraspecific_parts (space-joined "rank epithet..." round-trip) ---

// SpeciesInfraspecificParts resolves `infraspecific_parts` (§4.2, testable
// property 5): a space-joined "rank epithet rank epithet…" of occupied
// slots.
func SpeciesInfraspecificParts(sp *Species) string {
	var parts []string
	for _, s := range sp.Infraspecific {
		if !s.Occupied() {
			continue
		}
		parts = append(parts, string(s.Rank), s.Epithet)
		if s.Author != "" {
			parts = append(parts, s.Author)
		}
	}
	return strings.Join(parts, " ")
}

// SetSpeciesInfraspecificParts parses p (as produced by
// SpeciesInfraspecificParts) back into sp.Infraspecific, canonicalising
// whitespace (testable property 5). Tokens are consumed in groups of
// rank+epithet, with an optional author token consumed greedily whenever
// the next token is not itself a recognized rank (or input is exhausted).
func SetSpeciesInfraspecificParts(sp *Species, p string) error {
	tokens := strings.Fields(p)
	var slots []InfraspecificSlot

	for i := 0; i < len(tokens); {
		r := InfraspecificRank(tokens[i])
		if !ValidInfraspecificRanks[r] || r == InfraspecificRankNone {
			return validationError(errcode.ValidationEnumError, "infraspecific_parts",
				fmt.Sprintf("expected a rank token, got %q", tokens[i]))
		}
		i++
		if i >= len(tokens) {
			return validationError(errcode.ValidationEnumError, "infraspecific_parts",
				"rank token with no following epithet")
		}
		epithet := tokens[i]
		i++

		author := ""
		if i < len(tokens) {
			next := InfraspecificRank(tokens[i])
			if !ValidInfraspecificRanks[next] || next == InfraspecificRankNone {
				author = tokens[i]
				i++
			}
		}
		slots = append(slots, InfraspecificSlot{Rank: r, Epithet: epithet, Author: author})
	}

	if len(slots) > 4 {
		return validationError(0, "infraspecific_parts",
			"at most four infraspecific slots are supported")
	}

	var next [4]InfraspecificSlot
	copy(next[:], slots)
	sp.Infraspecific = next
	return validateInfraspecificSlots(sp.Infraspecific)
}

// RankWeight exposes the shared rank.Weight table for callers outside
// pkg/rank that only import pkg/taxon.
func RankWeight(r InfraspecificRank) int {
	return rank.Weight(rank.Rank(r))
}
