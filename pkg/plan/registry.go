// Package plan implements the Query Planner / Evaluator component (C5 of
// spec.md §4.5): it takes a pkg/query AST, resolves domains and column
// paths against a DomainRegistry, and compiles the result into a
// parameterized SQL WHERE/HAVING fragment a caller can embed in a SELECT
// against pkg/schema's tables. It never opens a connection itself —
// execution is the caller's (internal/io/search's) job — keeping this
// package pure and unit-testable without a database.
package plan

import (
	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/gn"
)

// RelationKind distinguishes a to-one (belongs-to) relation, which joins
// by a foreign key on the child table, from a to-many (has-many)
// relation, whose Empty/non-Empty semantics (§4.5 item 7) require an
// EXISTS test rather than a plain join column.
type RelationKind int

const (
	RelationBelongsTo RelationKind = iota
	RelationHasMany
)

// Relation describes one named hop from a domain to another, e.g.
// "species" -> "genus" (belongs-to) or "genus" -> "species" (has-many).
type Relation struct {
	Kind       RelationKind
	Table      string // the target table
	Domain     string // the target domain name, for recursive path resolution
	OwnColumn  string // column on *this* domain's table holding the FK (belongs-to)
	TheirColumn string // column on the target table holding the FK (has-many)
}

// DomainDescriptor describes one queryable domain: its backing table,
// the columns a query may reference directly, and the named relations a
// ColumnPath may traverse.
type DomainDescriptor struct {
	Table      string
	PrimaryKey string
	Columns    map[string]bool
	Relations  map[string]Relation
	// SearchableColumns are the columns the domain-prefix dialect (§4.4
	// Domain variant, §4.5 item 1) matches against when a query names
	// this domain directly, e.g. "sp LIKE Maxillaria".
	SearchableColumns []string
}

// DomainRegistry maps domain names (as used in query text, e.g. "genus",
// "species", "plant") to their descriptors (§4.5 item 1 "Domain
// resolution").
type DomainRegistry struct {
	domains map[string]DomainDescriptor
	aliases map[string]string
}

// NewDomainRegistry returns an empty registry; callers register domains
// with Register.
func NewDomainRegistry() *DomainRegistry {
	return &DomainRegistry{domains: map[string]DomainDescriptor{}, aliases: map[string]string{}}
}

// Register adds or replaces a domain descriptor.
func (r *DomainRegistry) Register(name string, d DomainDescriptor) {
	r.domains[name] = d
}

// Alias registers a short name (e.g. "sp", "gen", "fam", "acc") that
// resolves to an already-registered domain (§4.5 item 1 "short names").
func (r *DomainRegistry) Alias(short, target string) {
	r.aliases[short] = target
}

// Resolve looks up a domain by name, following one level of alias,
// returning a ParseUnknownDomainError wrapped gn.Error when the name
// isn't registered (§4.5 item 1).
func (r *DomainRegistry) Resolve(name string) (DomainDescriptor, error) {
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	d, ok := r.domains[name]
	if !ok {
		return DomainDescriptor{}, &gn.Error{
			Code: errcode.ParseUnknownDomainError,
			Msg:  "unknown domain: " + name,
		}
	}
	return d, nil
}

// Column validates that col is queryable on d, returning
// ParseUnknownColumnError otherwise (§4.5 item 1).
func (d DomainDescriptor) Column(col string) (string, error) {
	if !d.Columns[col] {
		return "", &gn.Error{
			Code: errcode.ParseUnknownColumnError,
			Msg:  "unknown column: " + col,
		}
	}
	return col, nil
}

// NewBotanicRegistry builds the DomainRegistry for the botanic schema
// (pkg/schema), covering the domains the mapper query scenarios in
// spec.md §8 exercise: family, genus, species, plant, accession,
// geography, vernacular_name.
func NewBotanicRegistry() *DomainRegistry {
	r := NewDomainRegistry()

	r.Register("family", DomainDescriptor{
		Table:      "family",
		PrimaryKey: "id",
		Columns: map[string]bool{
			"id": true, "epithet": true, "author": true, "qualifier": true,
			"cites": true,
		},
		Relations: map[string]Relation{
			"genus": {Kind: RelationHasMany, Table: "genus", Domain: "genus", TheirColumn: "family_id"},
		},
		SearchableColumns: []string{"epithet"},
	})

	r.Register("genus", DomainDescriptor{
		Table:      "genus",
		PrimaryKey: "id",
		Columns: map[string]bool{
			"id": true, "epithet": true, "author": true, "hybrid": true,
			"qualifier": true, "cites_override": true, "family_id": true,
			"subfamily": true, "tribe": true, "subtribe": true,
		},
		Relations: map[string]Relation{
			"family":  {Kind: RelationBelongsTo, Table: "family", Domain: "family", OwnColumn: "family_id"},
			"species": {Kind: RelationHasMany, Table: "species", Domain: "species", TheirColumn: "genus_id"},
		},
		SearchableColumns: []string{"epithet"},
	})

	r.Register("species", DomainDescriptor{
		Table:      "species",
		PrimaryKey: "id",
		Columns: map[string]bool{
			"id": true, "epithet": true, "sp_author": true, "hybrid": true,
			"sp_qual": true, "genus_id": true, "full_name": true,
			"full_sci_name": true, "cites_override": true, "red_list": true,
			"cultivar_epithet": true, "trade_name": true, "_last_updated": true,
		},
		Relations: map[string]Relation{
			"genus":             {Kind: RelationBelongsTo, Table: "genus", Domain: "genus", OwnColumn: "genus_id"},
			"accession":         {Kind: RelationHasMany, Table: "accession", Domain: "accession", TheirColumn: "species_id"},
			"vernacular_name":   {Kind: RelationHasMany, Table: "vernacular_name", Domain: "vernacular_name", TheirColumn: "species_id"},
			"species_distribution": {Kind: RelationHasMany, Table: "species_distribution", Domain: "species_distribution", TheirColumn: "species_id"},
		},
		SearchableColumns: []string{"epithet", "full_name", "full_sci_name", "trade_name", "cultivar_epithet"},
	})

	r.Register("accession", DomainDescriptor{
		Table:      "accession",
		PrimaryKey: "id",
		Columns: map[string]bool{
			"id": true, "species_id": true, "date_recvd": true,
			"quantity_recvd": true, "source": true,
		},
		Relations: map[string]Relation{
			"species": {Kind: RelationBelongsTo, Table: "species", Domain: "species", OwnColumn: "species_id"},
			"plant":   {Kind: RelationHasMany, Table: "plant", Domain: "plant", TheirColumn: "accession_id"},
		},
		SearchableColumns: []string{"source"},
	})

	r.Register("plant", DomainDescriptor{
		Table:      "plant",
		PrimaryKey: "id",
		Columns: map[string]bool{
			"id": true, "accession_id": true, "quantity": true,
			"geojson": true, "location_description": true,
		},
		Relations: map[string]Relation{
			"accession": {Kind: RelationBelongsTo, Table: "accession", Domain: "accession", OwnColumn: "accession_id"},
		},
		SearchableColumns: []string{"location_description"},
	})

	r.Register("geography", DomainDescriptor{
		Table:      "geography",
		PrimaryKey: "id",
		Columns: map[string]bool{
			"id": true, "name": true, "code": true, "level": true,
			"iso_code": true, "parent_id": true, "approx_area": true,
		},
		Relations: map[string]Relation{
			"parent": {Kind: RelationBelongsTo, Table: "geography", Domain: "geography", OwnColumn: "parent_id"},
		},
		SearchableColumns: []string{"name", "code"},
	})

	r.Register("vernacular_name", DomainDescriptor{
		Table:      "vernacular_name",
		PrimaryKey: "id",
		Columns: map[string]bool{
			"id": true, "name": true, "language": true, "species_id": true,
			"is_default": true,
		},
		Relations: map[string]Relation{
			"species": {Kind: RelationBelongsTo, Table: "species", Domain: "species", OwnColumn: "species_id"},
		},
		SearchableColumns: []string{"name"},
	})

	r.Alias("fam", "family")
	r.Alias("gen", "genus")
	r.Alias("sp", "species")
	r.Alias("acc", "accession")
	r.Alias("geo", "geography")
	r.Alias("vern", "vernacular_name")

	return r
}
