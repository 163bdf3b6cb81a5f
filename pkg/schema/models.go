// Package schema provides the database schema models for the botanic
// collection core (§3, §6 of the persistence layout).
package schema

import (
	"database/sql"
	"time"
)

// DDLGenerator defines how Go models generate PostgreSQL DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the PostgreSQL table name for this model.
	TableName() string
}

// Family is the top rank of the taxonomic hierarchy (§3).
type Family struct {
	// ID is UUID v5 generated from the epithet, mirroring the deterministic
	// content-addressed ids the name-resolution ecosystem uses for names.
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	// Epithet is the family name, unique and non-empty.
	Epithet string `db:"epithet" ddl:"VARCHAR(45) NOT NULL UNIQUE"`

	// Qualifier narrows circumscription: "s. lat.", "s. str.", or "".
	Qualifier string `db:"qualifier" ddl:"VARCHAR(10) NOT NULL DEFAULT ''"`

	// Cites is the CITES appendix (I, II, III), or NULL if not listed.
	Cites sql.NullString `db:"cites" ddl:"VARCHAR(3)"`

	// Author is the author citation for the family name.
	Author string `db:"author" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
}

// FamilySynonym records a directed "is-synonym-of" edge between two
// families (§3, §4.3). SynonymID is unique: a synonym has at most one
// accepted name.
type FamilySynonym struct {
	AcceptedID string `db:"accepted_id" ddl:"UUID NOT NULL"`
	SynonymID  string `db:"synonym_id" ddl:"UUID NOT NULL UNIQUE"`
}

// FamilyNote is a free-text annotation owned by a Family.
type FamilyNote struct {
	ID          string    `db:"id" ddl:"UUID PRIMARY KEY"`
	FamilyID    string    `db:"family_id" ddl:"UUID NOT NULL"`
	Category    string    `db:"category" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
	Note        string    `db:"note" ddl:"TEXT NOT NULL DEFAULT ''"`
	DateCreated time.Time `db:"date_created" ddl:"TIMESTAMP WITHOUT TIME ZONE NOT NULL DEFAULT NOW()"`
}

// FamilyPicture is a picture attachment owned by a Family.
type FamilyPicture struct {
	ID       string `db:"id" ddl:"UUID PRIMARY KEY"`
	FamilyID string `db:"family_id" ddl:"UUID NOT NULL"`
	Path     string `db:"path" ddl:"TEXT NOT NULL"`
	Category string `db:"category" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
}

// Genus is owned by exactly one Family (§3).
type Genus struct {
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	// Epithet is the generic name, non-empty.
	Epithet string `db:"epithet" ddl:"VARCHAR(64) NOT NULL"`

	// Hybrid marks a nothogenus: "×", "+", or NULL.
	Hybrid sql.NullString `db:"hybrid" ddl:"VARCHAR(1)"`

	// Qualifier narrows circumscription: "s. lat.", "s. str.", or "".
	Qualifier string `db:"qualifier" ddl:"VARCHAR(10) NOT NULL DEFAULT ''"`

	Author string `db:"author" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`

	// CitesOverride is the local CITES override; falls back to the owning
	// family's Cites when NULL (§4.2 cites hybrid attribute).
	CitesOverride sql.NullString `db:"cites_override" ddl:"VARCHAR(3)"`

	// FamilyID is the owning family. Every genus has a family (invariant 1).
	FamilyID string `db:"family_id" ddl:"UUID NOT NULL"`

	// Suprageneric classification, optional free text.
	Subfamily string `db:"subfamily" ddl:"VARCHAR(64) NOT NULL DEFAULT ''"`
	Tribe     string `db:"tribe" ddl:"VARCHAR(64) NOT NULL DEFAULT ''"`
	Subtribe  string `db:"subtribe" ddl:"VARCHAR(64) NOT NULL DEFAULT ''"`
}

// GenusSynonym is the genus-rank synonym edge table.
type GenusSynonym struct {
	AcceptedID string `db:"accepted_id" ddl:"UUID NOT NULL"`
	SynonymID  string `db:"synonym_id" ddl:"UUID NOT NULL UNIQUE"`
}

// GenusNote is a free-text annotation owned by a Genus.
type GenusNote struct {
	ID          string    `db:"id" ddl:"UUID PRIMARY KEY"`
	GenusID     string    `db:"genus_id" ddl:"UUID NOT NULL"`
	Category    string    `db:"category" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
	Note        string    `db:"note" ddl:"TEXT NOT NULL DEFAULT ''"`
	DateCreated time.Time `db:"date_created" ddl:"TIMESTAMP WITHOUT TIME ZONE NOT NULL DEFAULT NOW()"`
}

// GenusPicture is a picture attachment owned by a Genus.
type GenusPicture struct {
	ID       string `db:"id" ddl:"UUID PRIMARY KEY"`
	GenusID  string `db:"genus_id" ddl:"UUID NOT NULL"`
	Path     string `db:"path" ddl:"TEXT NOT NULL"`
	Category string `db:"category" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
}

// Habit is a growth-habit lookup value (e.g. "Shrub", "Tree", "Epiphyte").
type Habit struct {
	ID   string `db:"id" ddl:"UUID PRIMARY KEY"`
	Name string `db:"name" ddl:"VARCHAR(64) NOT NULL UNIQUE"`
}

// Color is a flower/foliage color lookup value.
type Color struct {
	ID   string `db:"id" ddl:"UUID PRIMARY KEY"`
	Name string `db:"name" ddl:"VARCHAR(64) NOT NULL UNIQUE"`
}

// Species is the composite taxon record (§3). Every field maps to one of
// the Name Formatter's (C1) inputs or one of C2's derived hybrid
// attributes.
type Species struct {
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	// Epithet may be empty for pure cultivars (a cultivar_epithet or
	// cv_group alone is sufficient).
	Epithet  string         `db:"epithet" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
	SpAuthor string         `db:"sp_author" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
	Hybrid   sql.NullString `db:"hybrid" ddl:"VARCHAR(1)"`
	SpQual   sql.NullString `db:"sp_qual" ddl:"VARCHAR(10)"`

	// Infraspecific slots, filled in order per invariant 4.
	Infrasp1Rank   sql.NullString `db:"infrasp1_rank" ddl:"VARCHAR(10)"`
	Infrasp1       sql.NullString `db:"infrasp1" ddl:"VARCHAR(255)"`
	Infrasp1Author sql.NullString `db:"infrasp1_author" ddl:"VARCHAR(255)"`
	Infrasp2Rank   sql.NullString `db:"infrasp2_rank" ddl:"VARCHAR(10)"`
	Infrasp2       sql.NullString `db:"infrasp2" ddl:"VARCHAR(255)"`
	Infrasp2Author sql.NullString `db:"infrasp2_author" ddl:"VARCHAR(255)"`
	Infrasp3Rank   sql.NullString `db:"infrasp3_rank" ddl:"VARCHAR(10)"`
	Infrasp3       sql.NullString `db:"infrasp3" ddl:"VARCHAR(255)"`
	Infrasp3Author sql.NullString `db:"infrasp3_author" ddl:"VARCHAR(255)"`
	Infrasp4Rank   sql.NullString `db:"infrasp4_rank" ddl:"VARCHAR(10)"`
	Infrasp4       sql.NullString `db:"infrasp4" ddl:"VARCHAR(255)"`
	Infrasp4Author sql.NullString `db:"infrasp4_author" ddl:"VARCHAR(255)"`

	CultivarEpithet string         `db:"cultivar_epithet" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
	CvGroup         string         `db:"cv_group" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
	TradeName       string         `db:"trade_name" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
	TrademarkSymbol string         `db:"trademark_symbol" ddl:"VARCHAR(1) NOT NULL DEFAULT ''"`
	PBRProtected    bool           `db:"pbr_protected" ddl:"BOOLEAN NOT NULL DEFAULT FALSE"`
	Grex            string         `db:"grex" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`

	// Infrageneric classification, optional.
	Subgenus   string `db:"subgenus" ddl:"VARCHAR(64) NOT NULL DEFAULT ''"`
	Section    string `db:"section" ddl:"VARCHAR(64) NOT NULL DEFAULT ''"`
	Subsection string `db:"subsection" ddl:"VARCHAR(64) NOT NULL DEFAULT ''"`
	Series     string `db:"series" ddl:"VARCHAR(64) NOT NULL DEFAULT ''"`
	Subseries  string `db:"subseries" ddl:"VARCHAR(64) NOT NULL DEFAULT ''"`

	CitesOverride sql.NullString `db:"cites_override" ddl:"VARCHAR(3)"`
	RedList       sql.NullString `db:"red_list" ddl:"VARCHAR(2)"`

	// FullName / FullSciName are derived by C1/C7 (invariant 3) and are
	// unique across all species.
	FullName    string `db:"full_name" ddl:"VARCHAR(500) NOT NULL UNIQUE"`
	FullSciName string `db:"full_sci_name" ddl:"VARCHAR(500) NOT NULL UNIQUE"`

	// GenusID is the owning genus. Every species has a genus (invariant 1).
	GenusID string `db:"genus_id" ddl:"UUID NOT NULL"`

	HabitID       sql.NullString `db:"habit_id" ddl:"UUID"`
	FlowerColorID sql.NullString `db:"flower_color_id" ddl:"UUID"`
}

// SpeciesSynonym is the species-rank synonym edge table.
type SpeciesSynonym struct {
	AcceptedID string `db:"accepted_id" ddl:"UUID NOT NULL"`
	SynonymID  string `db:"synonym_id" ddl:"UUID NOT NULL UNIQUE"`
}

// SpeciesNote is a free-text annotation owned by a Species.
type SpeciesNote struct {
	ID          string    `db:"id" ddl:"UUID PRIMARY KEY"`
	SpeciesID   string    `db:"species_id" ddl:"UUID NOT NULL"`
	Category    string    `db:"category" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
	Note        string    `db:"note" ddl:"TEXT NOT NULL DEFAULT ''"`
	DateCreated time.Time `db:"date_created" ddl:"TIMESTAMP WITHOUT TIME ZONE NOT NULL DEFAULT NOW()"`
}

// SpeciesPicture is a picture attachment owned by a Species. The
// `pictures` hybrid attribute (§4.2) additionally aggregates pictures of
// the species' active-plant descendants, which live outside this table
// in the external Accession/Plant subsystem (§6).
type SpeciesPicture struct {
	ID        string `db:"id" ddl:"UUID PRIMARY KEY"`
	SpeciesID string `db:"species_id" ddl:"UUID NOT NULL"`
	Path      string `db:"path" ddl:"TEXT NOT NULL"`
	Category  string `db:"category" ddl:"VARCHAR(255) NOT NULL DEFAULT ''"`
}

// VernacularName is a common name for a Species, unique on (name,
// language, species).
type VernacularName struct {
	ID        string         `db:"id" ddl:"UUID PRIMARY KEY"`
	Name      string         `db:"name" ddl:"VARCHAR(255) NOT NULL"`
	Language  sql.NullString `db:"language" ddl:"VARCHAR(10)"`
	SpeciesID string         `db:"species_id" ddl:"UUID NOT NULL"`
}

// DefaultVernacularName is the species' designated default vernacular
// name pointer (§3). SpeciesID is the primary key: at most one default
// per species.
type DefaultVernacularName struct {
	SpeciesID        string `db:"species_id" ddl:"UUID PRIMARY KEY"`
	VernacularNameID string `db:"vernacular_name_id" ddl:"UUID NOT NULL"`
}

// SpeciesDistribution is an edge from a Species to a Geography (§3).
type SpeciesDistribution struct {
	SpeciesID   string `db:"species_id" ddl:"UUID NOT NULL" gorm:"primaryKey"`
	GeographyID string `db:"geography_id" ddl:"UUID NOT NULL" gorm:"primaryKey"`
}

// Geography is a WGSRPD tree node (§3, §4.3).
type Geography struct {
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	Name string `db:"name" ddl:"VARCHAR(255) NOT NULL"`
	Code string `db:"code" ddl:"VARCHAR(64) NOT NULL UNIQUE"`
	// Level is the WGSRPD level (1=continent .. 4=basic recording unit).
	Level   int            `db:"level" ddl:"SMALLINT NOT NULL"`
	IsoCode sql.NullString `db:"iso_code" ddl:"VARCHAR(10)"`

	// Geojson is lazy-loaded polygon data; NULL means no polygon.
	Geojson sql.NullString `db:"geojson" ddl:"TEXT"`

	ParentID sql.NullString `db:"parent_id" ddl:"UUID"`

	// ApproxArea is the WGS84-sphere area in km², recomputed by C7 on
	// every insert/update (invariant 7).
	ApproxArea float64 `db:"approx_area" ddl:"DOUBLE PRECISION NOT NULL DEFAULT 0"`
}

// History is the append-only mutation log (C7, §4.7).
type History struct {
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	TableName string `db:"table_name" ddl:"VARCHAR(64) NOT NULL"`
	RowID     string `db:"row_id" ddl:"VARCHAR(64) NOT NULL"`
	// Operation is one of "insert", "update", "delete".
	Operation string `db:"operation" ddl:"VARCHAR(10) NOT NULL"`

	// Diff is the GNgob-encoded before/after values of changed columns.
	Diff []byte `db:"diff" ddl:"BYTEA NOT NULL"`

	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMP WITHOUT TIME ZONE NOT NULL DEFAULT NOW()"`
}

// SchemaVersion tracks applied schema migrations.
type SchemaVersion struct {
	Version     string    `db:"version" ddl:"TEXT PRIMARY KEY"`
	Description string    `db:"description" ddl:"TEXT"`
	AppliedAt   time.Time `db:"applied_at" ddl:"TIMESTAMP DEFAULT NOW()"`
}
