package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// generateDDL creates a CREATE TABLE statement from struct tags.
func generateDDL(model interface{}, tableName string) string {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var columns []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			columns = append(columns, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (\n%s\n);",
		tableName,
		strings.Join(columns, ",\n"))

	return ddl
}

// Family DDL methods
func (f Family) TableDDL() string { return generateDDL(f, "family") }
func (f Family) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_family_epithet ON family(epithet);",
	}
}
func (f Family) TableName() string { return "family" }

// FamilySynonym DDL methods
func (fs FamilySynonym) TableDDL() string { return generateDDL(fs, "family_synonym") }
func (fs FamilySynonym) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_family_synonym_accepted ON family_synonym(accepted_id);",
	}
}
func (fs FamilySynonym) TableName() string { return "family_synonym" }

// FamilyNote DDL methods
func (n FamilyNote) TableDDL() string { return generateDDL(n, "family_note") }
func (n FamilyNote) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_family_note_family ON family_note(family_id);",
	}
}
func (n FamilyNote) TableName() string { return "family_note" }

// FamilyPicture DDL methods
func (p FamilyPicture) TableDDL() string { return generateDDL(p, "family_picture") }
func (p FamilyPicture) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_family_picture_family ON family_picture(family_id);",
	}
}
func (p FamilyPicture) TableName() string { return "family_picture" }

// Genus DDL methods
func (g Genus) TableDDL() string { return generateDDL(g, "genus") }
func (g Genus) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_genus_epithet_author_qualifier_family ON genus(epithet, author, qualifier, family_id);",
		"CREATE INDEX idx_genus_family ON genus(family_id);",
	}
}
func (g Genus) TableName() string { return "genus" }

// GenusSynonym DDL methods
func (gs GenusSynonym) TableDDL() string { return generateDDL(gs, "genus_synonym") }
func (gs GenusSynonym) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_genus_synonym_accepted ON genus_synonym(accepted_id);",
	}
}
func (gs GenusSynonym) TableName() string { return "genus_synonym" }

// GenusNote DDL methods
func (n GenusNote) TableDDL() string { return generateDDL(n, "genus_note") }
func (n GenusNote) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_genus_note_genus ON genus_note(genus_id);",
	}
}
func (n GenusNote) TableName() string { return "genus_note" }

// GenusPicture DDL methods
func (p GenusPicture) TableDDL() string { return generateDDL(p, "genus_picture") }
func (p GenusPicture) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_genus_picture_genus ON genus_picture(genus_id);",
	}
}
func (p GenusPicture) TableName() string { return "genus_picture" }

// Habit DDL methods
func (h Habit) TableDDL() string   { return generateDDL(h, "habit") }
func (h Habit) IndexDDL() []string { return []string{} }
func (h Habit) TableName() string  { return "habit" }

// Color DDL methods
func (c Color) TableDDL() string   { return generateDDL(c, "color") }
func (c Color) IndexDDL() []string { return []string{} }
func (c Color) TableName() string  { return "color" }

// Species DDL methods
func (s Species) TableDDL() string { return generateDDL(s, "species") }
func (s Species) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_species_full_name ON species(full_name);",
		"CREATE UNIQUE INDEX idx_species_full_sci_name ON species(full_sci_name);",
		"CREATE INDEX idx_species_genus ON species(genus_id);",
		"CREATE INDEX idx_species_habit ON species(habit_id);",
		"CREATE INDEX idx_species_flower_color ON species(flower_color_id);",
	}
}
func (s Species) TableName() string { return "species" }

// SpeciesSynonym DDL methods
func (ss SpeciesSynonym) TableDDL() string { return generateDDL(ss, "species_synonym") }
func (ss SpeciesSynonym) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_species_synonym_accepted ON species_synonym(accepted_id);",
	}
}
func (ss SpeciesSynonym) TableName() string { return "species_synonym" }

// SpeciesNote DDL methods
func (n SpeciesNote) TableDDL() string { return generateDDL(n, "species_note") }
func (n SpeciesNote) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_species_note_species ON species_note(species_id);",
	}
}
func (n SpeciesNote) TableName() string { return "species_note" }

// SpeciesPicture DDL methods
func (p SpeciesPicture) TableDDL() string { return generateDDL(p, "species_picture") }
func (p SpeciesPicture) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_species_picture_species ON species_picture(species_id);",
	}
}
func (p SpeciesPicture) TableName() string { return "species_picture" }

// VernacularName DDL methods
func (v VernacularName) TableDDL() string { return generateDDL(v, "vernacular_name") }
func (v VernacularName) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_vernacular_name_unique ON vernacular_name(name, language, species_id);",
		"CREATE INDEX idx_vernacular_name_species ON vernacular_name(species_id);",
	}
}
func (v VernacularName) TableName() string { return "vernacular_name" }

// DefaultVernacularName DDL methods
func (d DefaultVernacularName) TableDDL() string { return generateDDL(d, "default_vernacular_name") }
func (d DefaultVernacularName) IndexDDL() []string {
	return []string{}
}
func (d DefaultVernacularName) TableName() string { return "default_vernacular_name" }

// SpeciesDistribution DDL methods
func (sd SpeciesDistribution) TableDDL() string {
	ddl := generateDDL(sd, "species_distribution")
	return strings.TrimSuffix(ddl, "\n);") + ",\n    PRIMARY KEY (species_id, geography_id)\n);"
}
func (sd SpeciesDistribution) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_species_distribution_geography ON species_distribution(geography_id);",
	}
}
func (sd SpeciesDistribution) TableName() string { return "species_distribution" }

// Geography DDL methods
func (g Geography) TableDDL() string { return generateDDL(g, "geography") }
func (g Geography) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_geography_code ON geography(code);",
		"CREATE INDEX idx_geography_parent ON geography(parent_id);",
	}
}
func (g Geography) TableName() string { return "geography" }

// History DDL methods
func (h History) TableDDL() string { return generateDDL(h, "history") }
func (h History) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_history_table_row ON history(table_name, row_id);",
		"CREATE INDEX idx_history_created_at ON history(created_at);",
	}
}
func (h History) TableName() string { return "history" }

// SchemaVersion DDL methods
func (sv SchemaVersion) TableDDL() string   { return generateDDL(sv, "schema_versions") }
func (sv SchemaVersion) IndexDDL() []string { return []string{} }
func (sv SchemaVersion) TableName() string  { return "schema_versions" }
