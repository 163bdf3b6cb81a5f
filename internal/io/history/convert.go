package history

import (
	"database/sql"

	"github.com/gnames/botanic/pkg/schema"
	"github.com/gnames/botanic/pkg/taxon"
)

// Converting a domain record (pkg/taxon) to its storage row (pkg/schema)
// before diffing lets this package reuse pkg/history.DiffFields/NewRecord,
// which key off the "db" struct tags pkg/schema's DDL generator reads —
// pkg/taxon's records carry no such tags, since C2 deliberately keeps its
// domain types free of storage concerns.

func toSchemaFamily(f *taxon.Family) schema.Family {
	if f == nil {
		return schema.Family{}
	}
	return schema.Family{
		ID:        f.ID,
		Epithet:   f.Epithet,
		Qualifier: string(f.Qualifier),
		Cites:     citesToSQL(f.Cites),
		Author:    f.Author,
	}
}

func toSchemaGenus(g *taxon.Genus) schema.Genus {
	if g == nil {
		return schema.Genus{}
	}
	return schema.Genus{
		ID:            g.ID,
		Epithet:       g.Epithet,
		Hybrid:        strToSQL(string(g.Hybrid)),
		Qualifier:     string(g.Qualifier),
		Author:        g.Author,
		CitesOverride: citesToSQL(g.CitesOverride),
		FamilyID:      g.FamilyID,
		Subfamily:     g.Subfamily,
		Tribe:         g.Tribe,
		Subtribe:      g.Subtribe,
	}
}

func toSchemaSpecies(sp *taxon.Species) schema.Species {
	if sp == nil {
		return schema.Species{}
	}
	s := schema.Species{
		ID:              sp.ID,
		Epithet:         sp.Epithet,
		SpAuthor:        sp.SpAuthor,
		Hybrid:          strToSQL(string(sp.Hybrid)),
		SpQual:          strToSQL(string(sp.SpQual)),
		CultivarEpithet: sp.CultivarEpithet,
		CvGroup:         sp.CvGroup,
		TradeName:       sp.TradeName,
		TrademarkSymbol: string(sp.TrademarkSymbol),
		PBRProtected:    sp.PBRProtected,
		Grex:            sp.Grex,
		Subgenus:        sp.Subgenus,
		Section:         sp.Section,
		Subsection:      sp.Subsection,
		Series:          sp.Series,
		Subseries:       sp.Subseries,
		CitesOverride:   citesToSQL(sp.CitesOverride),
		RedList:         strToSQL(string(sp.RedList)),
		FullName:        sp.FullName,
		FullSciName:     sp.FullSciName,
		GenusID:         sp.GenusID,
		HabitID:         ptrToSQL(sp.HabitID),
		FlowerColorID:   ptrToSQL(sp.FlowerColorID),
	}
	s.Infrasp1Rank, s.Infrasp1, s.Infrasp1Author = slotToSQL(sp.Infraspecific[0])
	s.Infrasp2Rank, s.Infrasp2, s.Infrasp2Author = slotToSQL(sp.Infraspecific[1])
	s.Infrasp3Rank, s.Infrasp3, s.Infrasp3Author = slotToSQL(sp.Infraspecific[2])
	s.Infrasp4Rank, s.Infrasp4, s.Infrasp4Author = slotToSQL(sp.Infraspecific[3])
	return s
}

func toSchemaVernacularName(v *taxon.VernacularName) schema.VernacularName {
	if v == nil {
		return schema.VernacularName{}
	}
	return schema.VernacularName{
		ID:        v.ID,
		Name:      v.Name,
		Language:  ptrToSQL(v.Language),
		SpeciesID: v.SpeciesID,
	}
}

func toSchemaGeography(g *taxon.Geography) schema.Geography {
	if g == nil {
		return schema.Geography{}
	}
	return schema.Geography{
		ID:         g.ID,
		Name:       g.Name,
		Code:       g.Code,
		Level:      g.Level,
		IsoCode:    ptrToSQL(g.IsoCode),
		Geojson:    ptrToSQL(g.Geojson),
		ParentID:   ptrToSQL(g.ParentID),
		ApproxArea: g.ApproxArea,
	}
}

func slotToSQL(slot taxon.InfraspecificSlot) (rank, epithet, author sql.NullString) {
	return strToSQL(string(slot.Rank)), strToSQL(slot.Epithet), strToSQL(slot.Author)
}

func citesToSQL(c *taxon.CitesAppendix) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return strToSQL(string(*c))
}

func ptrToSQL(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return strToSQL(*s)
}

func strToSQL(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
