package taxon

import "context"

// Repository is the persistence contract C2's create/update/delete
// operations are built on (§4.2). Implementations live in
// internal/io/taxon and are responsible for invariant 6 (InUseError on a
// blocked delete), invariant 5 (cascading delete), and handing mutations
// to C7 (history + derived-field recomputation) — the Repository itself
// only validates and persists; C7 wiring happens in the session wrapper
// (internal/io/history) that decorates a Repository.
type Repository interface {
	// Family
	CreateFamily(ctx context.Context, f *Family) (*Family, error)
	UpdateFamily(ctx context.Context, id string, patch *Family) (*Family, error)
	DeleteFamily(ctx context.Context, id string) error
	GetFamily(ctx context.Context, id string) (*Family, error)

	// Genus
	CreateGenus(ctx context.Context, g *Genus) (*Genus, error)
	UpdateGenus(ctx context.Context, id string, patch *Genus) (*Genus, error)
	DeleteGenus(ctx context.Context, id string) error
	GetGenus(ctx context.Context, id string) (*Genus, error)

	// Species
	CreateSpecies(ctx context.Context, sp *Species) (*Species, error)
	UpdateSpecies(ctx context.Context, id string, patch *Species) (*Species, error)
	DeleteSpecies(ctx context.Context, id string) error
	GetSpecies(ctx context.Context, id string) (*Species, error)

	// VernacularName
	CreateVernacularName(ctx context.Context, v *VernacularName) (*VernacularName, error)
	DeleteVernacularName(ctx context.Context, id string) error
	SetDefaultVernacularName(ctx context.Context, speciesID, vernacularNameID string) error

	// Geography
	CreateGeography(ctx context.Context, g *Geography) (*Geography, error)
	UpdateGeography(ctx context.Context, id string, patch *Geography) (*Geography, error)
	GetGeography(ctx context.Context, id string) (*Geography, error)

	// SpeciesDistribution
	AddDistribution(ctx context.Context, speciesID, geographyID string) error
	RemoveDistribution(ctx context.Context, speciesID, geographyID string) error

	// Synonym edges (§4.3). SetAccepted implements the reassignment
	// semantics; Synonyms lists every taxon whose accepted == id.
	SetAccepted(ctx context.Context, rnk TaxonRank, taxonID string, acceptedID *string) error
	Synonyms(ctx context.Context, rnk TaxonRank, acceptedID string) ([]string, error)
	Accepted(ctx context.Context, rnk TaxonRank, taxonID string) (*string, error)
}
