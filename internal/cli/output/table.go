package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"
)

// TableFormatter renders a *Table, a Table, a slice of structs (one row
// per element) or a single struct (one row per field).
//
// Struct fields choose their column with a `table:"HEADER"` tag;
// `table:"HEADER,wide"` shows the column only in wide mode and
// `table:"-"` hides it. Untagged fields use their upper-cased json name.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format implements Formatter.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch t := data.(type) {
	case nil:
		return nil
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	v := reflect.Indirect(reflect.ValueOf(data))
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		t, err := rowsTable(v, f.Wide)
		if err != nil {
			return err
		}
		return t.RenderWithOptions(w, f.NoHeaders)
	case reflect.Struct:
		return fieldsTable(v, f.Wide).RenderWithOptions(w, f.NoHeaders)
	default:
		_, err := fmt.Fprintln(w, cell(v))
		return err
	}
}

type column struct {
	header string
	index  int
}

// columns picks the visible fields of a struct type.
func columns(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		header, wideOnly, skip := parseTableTag(field)
		if skip || (wideOnly && !wide) {
			continue
		}
		cols = append(cols, column{header: header, index: i})
	}
	return cols
}

func parseTableTag(field reflect.StructField) (header string, wideOnly, skip bool) {
	tag := field.Tag.Get("table")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	wideOnly = opts == "wide"
	if name != "" {
		return name, wideOnly, false
	}

	name = field.Name
	if jsonName, _, _ := strings.Cut(field.Tag.Get("json"), ","); jsonName == "-" {
		return "", false, true
	} else if jsonName != "" {
		name = jsonName
	}
	return strings.ToUpper(name), wideOnly, false
}

func rowsTable(v reflect.Value, wide bool) (*Table, error) {
	elem := v.Type().Elem()
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		t := &Table{Headers: []string{"VALUE"}}
		for i := 0; i < v.Len(); i++ {
			t.AddRow(cell(v.Index(i)))
		}
		return t, nil
	}

	cols := columns(elem, wide)
	if len(cols) == 0 {
		return nil, fmt.Errorf("table output: %s has no columns", elem)
	}

	t := &Table{}
	for _, c := range cols {
		t.Headers = append(t.Headers, c.header)
	}
	for i := 0; i < v.Len(); i++ {
		row := reflect.Indirect(v.Index(i))
		cells := make([]string, len(cols))
		if row.IsValid() {
			for j, c := range cols {
				cells[j] = cell(row.Field(c.index))
			}
		}
		t.AddRow(cells...)
	}
	return t, nil
}

func fieldsTable(v reflect.Value, wide bool) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, c := range columns(v.Type(), wide) {
		t.AddRow(strings.ToLower(c.header), cell(v.Field(c.index)))
	}
	return t
}

var timeType = reflect.TypeOf(time.Time{})

// cell formats one value for display. Empty values print as "-".
func cell(v reflect.Value) string {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return "-"
	}

	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02 15:04:05")
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Slice, reflect.Array, reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("%d", v.Len())
	case reflect.Struct:
		return fmt.Sprintf("%+v", v.Interface())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// Table is pre-built tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table with headers.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table as tab-aligned columns.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders replaces the headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
