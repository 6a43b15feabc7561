// Package output provides output formatting for tokengate-cli.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
)

// Table is an explicit grid for callers that lay out their own columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends one row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the grid with aligned columns.
func (t *Table) Render(w io.Writer) error {
	return t.write(w, false)
}

func (t *Table) write(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// TableFormatter renders single records as FIELD/VALUE tables. The CLI
// deals in one token record or one status summary at a time, so there
// is no multi-row struct layout; anything that is not a struct, a
// string-keyed map, or an explicit Table falls back to indented JSON.
type TableFormatter struct {
	NoHeaders bool
}

// Format renders data as an aligned table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.write(w, f.NoHeaders)
	case Table:
		return v.write(w, f.NoHeaders)
	}

	if t, ok := fieldTable(data); ok {
		return t.write(w, f.NoHeaders)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// fieldTable flattens a single struct or a string-keyed map into
// FIELD/VALUE rows. Struct fields are labeled by their json tag, and
// map rows are sorted by key so the output is stable.
func fieldTable(data any) (*Table, bool) {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return &Table{}, true
		}
		v = v.Elem()
	}

	t := &Table{Headers: []string{"FIELD", "VALUE"}}

	switch v.Kind() {
	case reflect.Struct:
		rt := v.Type()
		for i := 0; i < rt.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() {
				continue
			}
			t.AddRow(fieldLabel(field), cell(v.Field(i)))
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.AddRow(k, cell(v.MapIndex(reflect.ValueOf(k))))
		}
	default:
		return nil, false
	}

	return t, true
}

func fieldLabel(f reflect.StructField) string {
	tag := strings.Split(f.Tag.Get("json"), ",")[0]
	if tag != "" && tag != "-" {
		return tag
	}
	return strings.ToLower(f.Name)
}

// cell renders one value; empty strings show as "-" so sparse records
// stay readable.
func cell(v reflect.Value) string {
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		if v.String() == "" {
			return "-"
		}
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}
