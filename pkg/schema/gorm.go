package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate, in an order
// that satisfies foreign key dependencies (owning tables before their
// children).
func AllModels() []interface{} {
	return []interface{}{
		&Family{},
		&FamilySynonym{},
		&FamilyNote{},
		&FamilyPicture{},
		&Habit{},
		&Color{},
		&Genus{},
		&GenusSynonym{},
		&GenusNote{},
		&GenusPicture{},
		&Species{},
		&SpeciesSynonym{},
		&SpeciesNote{},
		&SpeciesPicture{},
		&VernacularName{},
		&DefaultVernacularName{},
		&Geography{},
		&SpeciesDistribution{},
		&History{},
		&SchemaVersion{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
