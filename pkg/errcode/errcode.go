package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBEmptyDatabaseError
	DBNotConnectedError
	DBTableExistsCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError
	DBQueryViewsError
	DBScanViewError
	DBDropViewError
	DBCreateViewError
	DBCreateViewIndexError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError

	// Domain validation errors (C2) — §7 ValidationError
	ValidationEmptyFieldError
	ValidationLengthError
	ValidationEnumError
	ValidationRankOrderError
	ValidationSynonymCycleError
	ValidationSynonymSelfError
	ValidationFullNameUniqueError

	// InUse errors (invariant 6) — §7 InUseError
	InUseFamilyHasGeneraError
	InUseGenusHasSpeciesError
	InUseSpeciesHasAccessionsError

	// Query parse errors (C4) — §7 ParseError
	ParseUnknownDomainError
	ParseUnknownColumnError
	ParseUnknownFunctionError
	ParseSyntaxError
	ParseLexError

	// Query evaluation errors (C5) — §7 SearchError
	SearchUnrelatedCorrelationError
	SearchAggregateMixError
	SearchUnknownStrategyError
	SearchDispatchError
	SearchExecError

	// History / event bus errors (C7)
	HistoryRecomputeError
	HistoryWriteError
	HistoryRebuildCancelledError

	// Geography / area computation errors (C3)
	GeographyAreaComputeError
	GeographyCycleError

	// SVG map rendering errors
	SVGMapRenderError
)
