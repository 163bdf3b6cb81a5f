package taxon

// Qualifier narrows a Family/Genus circumscription (§3).
type Qualifier string

const (
	QualifierNone    Qualifier = ""
	QualifierSensuL  Qualifier = "s. lat."
	QualifierSensuS  Qualifier = "s. str."
)

// ValidQualifiers lists every value Qualifier fields may take.
var ValidQualifiers = map[Qualifier]bool{
	QualifierNone:   true,
	QualifierSensuL: true,
	QualifierSensuS: true,
}

// HybridMarker marks a nothotaxon (§3).
type HybridMarker string

const (
	HybridNone       HybridMarker = ""
	HybridNothogenus HybridMarker = "×"
	HybridGraft      HybridMarker = "+"
)

// ValidHybridMarkers lists every value Hybrid fields may take.
var ValidHybridMarkers = map[HybridMarker]bool{
	HybridNone:       true,
	HybridNothogenus: true,
	HybridGraft:      true,
}

// SpQualifier qualifies a species-level determination (§3).
type SpQualifier string

const (
	SpQualNone   SpQualifier = ""
	SpQualAgg    SpQualifier = "agg."
	SpQualSensuL SpQualifier = "s. lat."
	SpQualSensuS SpQualifier = "s. str."
)

// ValidSpQualifiers lists every value SpQual may take.
var ValidSpQualifiers = map[SpQualifier]bool{
	SpQualNone:   true,
	SpQualAgg:    true,
	SpQualSensuL: true,
	SpQualSensuS: true,
}

// CitesAppendix is the CITES appendix number (§3).
type CitesAppendix string

const (
	CitesNone CitesAppendix = ""
	CitesI    CitesAppendix = "I"
	CitesII   CitesAppendix = "II"
	CitesIII  CitesAppendix = "III"
)

// ValidCitesAppendices lists every value a cites field may take.
var ValidCitesAppendices = map[CitesAppendix]bool{
	CitesNone: true,
	CitesI:    true,
	CitesII:   true,
	CitesIII:  true,
}

// RedListCategory is an IUCN Red List category (§3).
type RedListCategory string

const (
	RedListNone RedListCategory = ""
	RedListEX   RedListCategory = "EX"
	RedListEW   RedListCategory = "EW"
	RedListRE   RedListCategory = "RE"
	RedListCR   RedListCategory = "CR"
	RedListEN   RedListCategory = "EN"
	RedListVU   RedListCategory = "VU"
	RedListNT   RedListCategory = "NT"
	RedListLC   RedListCategory = "LC"
	RedListDD   RedListCategory = "DD"
	RedListNE   RedListCategory = "NE"
)

// ValidRedListCategories lists every value RedList may take.
var ValidRedListCategories = map[RedListCategory]bool{
	RedListNone: true, RedListEX: true, RedListEW: true, RedListRE: true,
	RedListCR: true, RedListEN: true, RedListVU: true, RedListNT: true,
	RedListLC: true, RedListDD: true, RedListNE: true,
}

// TrademarkSymbol is appended after a species' trade name (§4.1 step 10).
type TrademarkSymbol string

const (
	TrademarkNone TrademarkSymbol = ""
	TrademarkTM   TrademarkSymbol = "™"
	TrademarkR    TrademarkSymbol = "®"
)

// ValidTrademarkSymbols lists every value TrademarkSymbol may take.
var ValidTrademarkSymbols = map[TrademarkSymbol]bool{
	TrademarkNone: true,
	TrademarkTM:   true,
	TrademarkR:    true,
}

// InfraspecificRank is the rank of one of a Species' four ordered
// infraspecific slots (§3, §4.2).
type InfraspecificRank string

const (
	InfraspecificRankNone InfraspecificRank = ""
	InfraspecificSubsp    InfraspecificRank = "subsp."
	InfraspecificVar      InfraspecificRank = "var."
	InfraspecificSubvar   InfraspecificRank = "subvar."
	InfraspecificForma    InfraspecificRank = "f."
	InfraspecificSubforma InfraspecificRank = "subf."
)

// ValidInfraspecificRanks lists every value an infraspecific slot's rank
// may take.
var ValidInfraspecificRanks = map[InfraspecificRank]bool{
	InfraspecificRankNone: true,
	InfraspecificSubsp:    true,
	InfraspecificVar:      true,
	InfraspecificSubvar:   true,
	InfraspecificForma:    true,
	InfraspecificSubforma: true,
}
