package taxon

import (
	"strings"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/rank"
)

// strip trims leading/trailing whitespace from s; the Validate* functions
// apply it to the string fields a Create/Update call receives, mirroring
// the "strip strings" validator of §4.2.
func strip(s string) string {
	return strings.TrimSpace(s)
}

// ValidateFamily applies §4.2's field validators to f: strips strings,
// enforces the epithet length limit and the qualifier/cites enums.
func ValidateFamily(f *Family) error {
	f.Epithet = strip(f.Epithet)
	f.Author = strip(f.Author)

	if f.Epithet == "" {
		return validationError(errcode.ValidationEmptyFieldError, "epithet",
			"family epithet must not be empty")
	}
	if len(f.Epithet) > 45 {
		return validationError(errcode.ValidationLengthError, "epithet",
			"family epithet must be at most 45 characters")
	}
	if !ValidQualifiers[f.Qualifier] {
		return validationError(errcode.ValidationEnumError, "qualifier",
			"invalid family qualifier")
	}
	if f.Cites != nil && !ValidCitesAppendices[*f.Cites] {
		return validationError(errcode.ValidationEnumError, "cites",
			"invalid CITES appendix")
	}
	return nil
}

// ValidateGenus applies §4.2's field validators to g.
func ValidateGenus(g *Genus) error {
	g.Epithet = strip(g.Epithet)
	g.Author = strip(g.Author)
	g.Subfamily = strip(g.Subfamily)
	g.Tribe = strip(g.Tribe)
	g.Subtribe = strip(g.Subtribe)

	if g.Epithet == "" {
		return validationError(errcode.ValidationEmptyFieldError, "epithet",
			"genus epithet must not be empty")
	}
	if len(g.Epithet) > 64 {
		return validationError(errcode.ValidationLengthError, "epithet",
			"genus epithet must be at most 64 characters")
	}
	if !ValidHybridMarkers[g.Hybrid] {
		return validationError(errcode.ValidationEnumError, "hybrid",
			"invalid genus hybrid marker")
	}
	if !ValidQualifiers[g.Qualifier] {
		return validationError(errcode.ValidationEnumError, "qualifier",
			"invalid genus qualifier")
	}
	if g.CitesOverride != nil && !ValidCitesAppendices[*g.CitesOverride] {
		return validationError(errcode.ValidationEnumError, "cites_override",
			"invalid CITES appendix")
	}
	if g.FamilyID == "" {
		return validationError(errcode.ValidationEmptyFieldError, "family_id",
			"genus must belong to a family (invariant 1)")
	}
	return nil
}

// ValidateSpecies applies §4.2's field validators to sp, including
// invariant 4 (infraspecific slots filled in order, monotonically
// descending rank).
func ValidateSpecies(sp *Species) error {
	sp.Epithet = strip(sp.Epithet)
	sp.SpAuthor = strip(sp.SpAuthor)
	sp.CultivarEpithet = strip(sp.CultivarEpithet)
	sp.CvGroup = strip(sp.CvGroup)
	sp.TradeName = strip(sp.TradeName)
	sp.Grex = strip(sp.Grex)

	if len(sp.Epithet) > 255 {
		return validationError(errcode.ValidationLengthError, "epithet",
			"species epithet must be at most 255 characters")
	}
	if !ValidHybridMarkers[sp.Hybrid] {
		return validationError(errcode.ValidationEnumError, "hybrid",
			"invalid species hybrid marker")
	}
	if !ValidSpQualifiers[sp.SpQual] {
		return validationError(errcode.ValidationEnumError, "sp_qual",
			"invalid species qualifier")
	}
	if !ValidTrademarkSymbols[sp.TrademarkSymbol] {
		return validationError(errcode.ValidationEnumError, "trademark_symbol",
			"invalid trademark symbol")
	}
	if sp.CitesOverride != nil && !ValidCitesAppendices[*sp.CitesOverride] {
		return validationError(errcode.ValidationEnumError, "cites_override",
			"invalid CITES appendix")
	}
	if !ValidRedListCategories[sp.RedList] {
		return validationError(errcode.ValidationEnumError, "red_list",
			"invalid IUCN Red List category")
	}
	if sp.GenusID == "" {
		return validationError(errcode.ValidationEmptyFieldError, "genus_id",
			"species must belong to a genus (invariant 1)")
	}

	if err := validateInfraspecificSlots(sp.Infraspecific); err != nil {
		return err
	}
	return nil
}

// validateInfraspecificSlots enforces invariant 4: slot k is occupied only
// if slot k-1 is occupied, and occupied ranks appear in monotonically
// descending taxonomic order per rank.InfraspecificOrder.
func validateInfraspecificSlots(slots [4]InfraspecificSlot) error {
	seenUnoccupied := false
	lastWeight := -1

	for i, slot := range slots {
		slot.Epithet = strip(slot.Epithet)
		slot.Author = strip(slot.Author)

		if !ValidInfraspecificRanks[slot.Rank] {
			return validationError(errcode.ValidationEnumError, "infraspecific_rank",
				"invalid infraspecific rank")
		}

		if !slot.Occupied() {
			seenUnoccupied = true
			continue
		}
		if seenUnoccupied {
			return validationError(errcode.ValidationRankOrderError,
				"infraspecific_slots",
				"infraspecific slots must be filled in order (invariant 4)")
		}

		w := rank.Weight(rank.Rank(slot.Rank))
		if w <= lastWeight {
			return validationError(errcode.ValidationRankOrderError,
				"infraspecific_slots",
				"infraspecific ranks must descend monotonically (invariant 4)")
		}
		lastWeight = w
		_ = i
	}
	return nil
}

// ValidateVernacularName applies §3's field validators.
func ValidateVernacularName(v *VernacularName) error {
	v.Name = strip(v.Name)
	if v.Name == "" {
		return validationError(errcode.ValidationEmptyFieldError, "name",
			"vernacular name must not be empty")
	}
	if len(v.Name) > 255 {
		return validationError(errcode.ValidationLengthError, "name",
			"vernacular name must be at most 255 characters")
	}
	if v.SpeciesID == "" {
		return validationError(errcode.ValidationEmptyFieldError, "species_id",
			"vernacular name must belong to a species")
	}
	return nil
}

// ValidateGeography applies §3's field validators.
func ValidateGeography(g *Geography) error {
	g.Name = strip(g.Name)
	g.Code = strip(g.Code)

	if g.Code == "" {
		return validationError(errcode.ValidationEmptyFieldError, "code",
			"geography code must not be empty")
	}
	if g.Level < 1 || g.Level > 4 {
		return validationError(errcode.ValidationEnumError, "level",
			"geography level must be between 1 and 4")
	}
	return nil
}
