// Package history implements the History / Event Bus component (C7 of
// spec.md §4.7): pure helpers for diffing before/after row state into
// history records, deriving the columns C7 recomputes on write
// (Species.full_name/full_sci_name, Geography.approx_area), and driving
// a chunked batch "rebuild" pass with cooperative cancellation (§5). The
// impure half — actually writing history rows and decorating
// pkg/taxon.Repository within a transaction — lives in
// internal/io/history.
package history

import (
	"reflect"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

// Operation tags which kind of mutation a Record describes.
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// FieldDiff is one changed column between a row's before/after state
// (§4.7 "the diff of changed columns with before/after values").
type FieldDiff struct {
	Column string
	Before any
	After  any
}

// Record is one history entry: table name, row id, operation, and the
// diff of changed columns (§4.7).
type Record struct {
	Table     string
	RowID     string
	Operation Operation
	Diffs     []FieldDiff
}

// DiffFields compares two structs of the same type field-by-field via
// their "db" struct tags — the same tag pkg/schema's DDL generator reads
// — and returns only the columns that changed.
func DiffFields(before, after interface{}) []FieldDiff {
	bv := indirect(reflect.ValueOf(before))
	av := indirect(reflect.ValueOf(after))
	t := bv.Type()

	var diffs []FieldDiff
	for i := 0; i < t.NumField(); i++ {
		col := t.Field(i).Tag.Get("db")
		if col == "" {
			continue
		}
		bf := bv.Field(i).Interface()
		af := av.Field(i).Interface()
		if !reflect.DeepEqual(bf, af) {
			diffs = append(diffs, FieldDiff{Column: col, Before: bf, After: af})
		}
	}
	return diffs
}

func indirect(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Ptr {
		return v.Elem()
	}
	return v
}

// NewRecord builds a history Record for one row mutation. Insert/Delete
// record the full post/pre row state as one-sided diffs; Update records
// only changed columns and returns nil when nothing changed (§4.7's
// "Skip if unchanged" applies the same way to history entries as it does
// to the derived full_name/full_sci_name columns).
func NewRecord(table, rowID string, op Operation, before, after interface{}) *Record {
	var diffs []FieldDiff
	switch op {
	case OpInsert:
		diffs = oneSidedDiffs(after, false)
	case OpDelete:
		diffs = oneSidedDiffs(before, true)
	default:
		diffs = DiffFields(before, after)
		if len(diffs) == 0 {
			return nil
		}
	}
	return &Record{Table: table, RowID: rowID, Operation: op, Diffs: diffs}
}

// EncodeDiffs gob-encodes a Record's diffs for storage in the history
// table's diff column, the same GNgob encoding the teacher uses to cache
// parsed-name results.
func EncodeDiffs(diffs []FieldDiff) ([]byte, error) {
	enc := gnfmt.GNgob{}
	b, err := enc.Encode(diffs)
	if err != nil {
		return nil, &gn.Error{Code: errcode.HistoryWriteError, Msg: "failed to encode history diff", Err: err}
	}
	return b, nil
}

// DecodeDiffs reverses EncodeDiffs.
func DecodeDiffs(b []byte) ([]FieldDiff, error) {
	enc := gnfmt.GNgob{}
	var diffs []FieldDiff
	if err := enc.Decode(b, &diffs); err != nil {
		return nil, &gn.Error{Code: errcode.HistoryWriteError, Msg: "failed to decode history diff", Err: err}
	}
	return diffs, nil
}

func oneSidedDiffs(v interface{}, isBefore bool) []FieldDiff {
	rv := indirect(reflect.ValueOf(v))
	t := rv.Type()
	diffs := make([]FieldDiff, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		col := t.Field(i).Tag.Get("db")
		if col == "" {
			continue
		}
		val := rv.Field(i).Interface()
		d := FieldDiff{Column: col}
		if isBefore {
			d.Before = val
		} else {
			d.After = val
		}
		diffs = append(diffs, d)
	}
	return diffs
}
