// Package nameformat builds botanical name strings (C1 of the domain
// model) from Species/Genus/Family records. Every function here is pure:
// no I/O, no database access, no randomness.
package nameformat

import "strings"

// GenusInput is the subset of a Genus record the formatter needs.
type GenusInput struct {
	Epithet   string
	Hybrid    string // "×", "+", or ""
	Qualifier string // "s. lat.", "s. str.", or ""
	Author    string
}

// InfraspecificSlot is one of a Species' four ordered infraspecific slots.
type InfraspecificSlot struct {
	Rank    string // "subsp.", "var.", "subvar.", "f.", "subf.", or ""
	Epithet string
	Author  string
}

// Qualification carries a qualified rank/qualifier pair, per the
// "qualification" input flag of spec.md §4.1 (shape supplemented from
// original_source/ — see SPEC_FULL.md).
//
// Rank is one of "genus", "sp", "infrasp1".."infrasp4", "cv", or any other
// value (including "") meaning the qualifier is appended in parentheses
// after the name.
type Qualification struct {
	Rank      string
	Qualifier string
}

// SpeciesInput is the subset of a Species record the formatter needs.
type SpeciesInput struct {
	Genus GenusInput

	Epithet  string // "sp" in the original
	Hybrid   string // "×", "+", or ""
	SpAuthor string
	SpQual   string // "agg.", "s. lat.", "s. str.", or ""

	Infraspecific [4]InfraspecificSlot

	Grex            string
	CvGroup         string
	CultivarEpithet string
	TradeName       string
	TrademarkSymbol string // "", "™", "®"
	PBRProtected    bool
}

// Flags control Format's output.
type Flags struct {
	Authors       bool
	Markup        bool
	Genus         bool // include leading genus name; defaults true via NewFlags
	RemoveZWS     bool
	ForSearchView bool
	Qualification *Qualification
}

// NewFlags returns Flags with Genus defaulted to true, matching the
// original's str(genus=True) default.
func NewFlags() Flags {
	return Flags{Genus: true}
}

// xmlSafe escapes the handful of characters that matter when markup is on.
func xmlSafe(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}

func dimSpan(s string, forSearchView bool) string {
	if !forSearchView {
		return s
	}
	return "<dim>" + s + "</dim>"
}

// FormatGenus renders the plain (non-markup) genus string: hybrid marker,
// epithet, qualifier, optional author — grounded on genus.py's Genus.str.
func FormatGenus(g GenusInput, authors bool) string {
	parts := []string{g.Hybrid, g.Epithet, g.Qualifier}
	if authors && g.Author != "" {
		parts = append(parts, xmlSafe(g.Author))
	}
	return joinNonEmpty(parts)
}

// MarkupGenus renders the genus string with italics markup on the epithet
// (unless the epithet is all-uppercase, matching genus.py's markup()).
func MarkupGenus(g GenusInput, authors, forSearchView bool) string {
	var b strings.Builder
	if g.Hybrid != "" {
		b.WriteString(g.Hybrid)
		b.WriteString(" ")
	}
	if g.Epithet == strings.ToUpper(g.Epithet) {
		b.WriteString(xmlSafe(g.Epithet))
	} else {
		b.WriteString("<i>")
		b.WriteString(xmlSafe(g.Epithet))
		b.WriteString("</i>")
	}
	if g.Qualifier != "" {
		b.WriteString(" ")
		b.WriteString(g.Qualifier)
	}
	if authors && g.Author != "" {
		author := xmlSafe(g.Author)
		b.WriteString(" ")
		b.WriteString(dimSpan(author, forSearchView))
	}
	return b.String()
}

// Format builds the canonical species name string per spec.md §4.1's
// twelve-step concatenation algorithm.
func Format(sp SpeciesInput, flags Flags) string {
	var qualRank, qualifier string
	if flags.Qualification != nil {
		qualRank = flags.Qualification.Rank
		qualifier = flags.Qualification.Qualifier
	}
	if qualifier == "incorrect" {
		qualRank = ""
	}

	// 1-2. leading qualifier + genus.
	var genus string
	if flags.Genus {
		if qualRank == "genus" {
			genus = qualifier + " "
		}
		if flags.Markup {
			genus += MarkupGenus(sp.Genus, flags.Authors, flags.ForSearchView)
		} else {
			genus += FormatGenus(sp.Genus, flags.Authors)
		}
	}

	// 3. species epithet with optional leading ZWS.
	epithet := sp.Epithet
	if epithet != "" && !flags.RemoveZWS {
		epithet = zws + epithet
	}

	escape := func(s string) string { return s }
	italicize := func(s string) string { return s }
	if flags.Markup {
		escape = xmlSafe
		italicize = func(s string) string { return MarkupItalics(xmlSafe(s)) }
		if epithet != "" {
			epithet = italicize(epithet)
		}
	}

	if sp.Hybrid != "" {
		epithet = sp.Hybrid + " " + epithet
	}
	if qualRank == "sp" {
		epithet = qualifier + " " + epithet
	}

	// 4. sp_author.
	var author string
	if flags.Authors && sp.SpAuthor != "" {
		author = escape(sp.SpAuthor)
		author = dimSpan(author, flags.ForSearchView)
	}

	// 5. infraspecific slots in order.
	var infraParts []string
	for level := 1; level <= 4; level++ {
		slot := sp.Infraspecific[level-1]
		if qualRank == infraLevelRank(level) && (slot.Rank != "" || slot.Epithet != "") {
			infraParts = append(infraParts, qualifier)
		}
		if slot.Rank != "" {
			infraParts = append(infraParts, slot.Rank)
		}
		if slot.Epithet != "" && slot.Rank != "" {
			infraParts = append(infraParts, italicize(slot.Epithet))
		} else if slot.Epithet != "" {
			infraParts = append(infraParts, escape(slot.Epithet))
		}
		if flags.Authors && slot.Author != "" {
			a := escape(slot.Author)
			infraParts = append(infraParts, dimSpan(a, flags.ForSearchView))
		}
	}

	// 6. grex.
	if sp.Grex != "" {
		infraParts = append(infraParts, sp.Grex)
	}

	// 7. cv_group.
	if sp.CvGroup != "" {
		if sp.CultivarEpithet != "" {
			infraParts = append(infraParts, "("+sp.CvGroup+" Group)")
		} else {
			infraParts = append(infraParts, sp.CvGroup+" Group")
		}
	}

	if sp.CultivarEpithet != "" && qualRank == "cv" {
		infraParts = append(infraParts, qualifier)
	}

	// 8. cultivar epithet.
	switch sp.CultivarEpithet {
	case "cv.", "cvs.":
		infraParts = append(infraParts, sp.CultivarEpithet)
	case "":
		// nothing
	default:
		infraParts = append(infraParts, "'"+escape(sp.CultivarEpithet)+"'")
	}

	// 9. PBR.
	if sp.PBRProtected {
		pbr := "(PBR)"
		if flags.Markup {
			pbr = "<small>" + pbr + "</small>"
		}
		pbr = dimSpan(pbr, flags.ForSearchView)
		infraParts = append(infraParts, pbr)
	}

	// 10. trade name in small caps.
	if sp.TradeName != "" {
		tn := escape(sp.TradeName)
		if flags.Markup {
			infraParts = append(infraParts, smallCaps(tn)+sp.TrademarkSymbol)
		} else {
			infraParts = append(infraParts, strings.ToUpper(tn)+sp.TrademarkSymbol)
		}
	}

	binomial := []string{genus, epithet, author}

	// 11-12. trailing qualifier + sp_qual.
	var tail []string
	trailing := qualifier != ""
	switch qualRank {
	case "genus", "sp", "infrasp1", "infrasp2", "infrasp3", "infrasp4", "cv":
		trailing = false
	}
	if trailing {
		tail = append(tail, "("+qualifier+")")
	}
	if sp.SpQual != "" {
		tail = append(tail, sp.SpQual)
	}

	all := append(append(binomial, infraParts...), tail...)
	return joinNonEmpty(all)
}

func infraLevelRank(level int) string {
	switch level {
	case 1:
		return "infrasp1"
	case 2:
		return "infrasp2"
	case 3:
		return "infrasp3"
	case 4:
		return "infrasp4"
	}
	return ""
}

func joinNonEmpty(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
