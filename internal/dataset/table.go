package dataset

import "fmt"

// Column is a single named column of numeric values.
type Column struct {
	Name   string
	Values []float64
}

// Table is a set of named numeric columns. Operators produce tables as named
// results, for example a histogram with "bins" and "counts" columns.
type Table struct {
	Columns []Column
}

// NewTable creates an empty table.
func NewTable() *Table { return &Table{} }

// Kind implements DataObject.
func (t *Table) Kind() Kind { return KindTable }

// DeepCopy implements DataObject.
func (t *Table) DeepCopy() DataObject {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = Column{Name: c.Name, Values: append([]float64(nil), c.Values...)}
	}
	return out
}

// AddColumn appends a column. A column with a duplicate name replaces the
// existing one.
func (t *Table) AddColumn(name string, values []float64) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			t.Columns[i].Values = values
			return
		}
	}
	t.Columns = append(t.Columns, Column{Name: name, Values: values})
}

// Column returns the values of the named column, or nil when absent.
func (t *Table) Column(name string) []float64 {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return t.Columns[i].Values
		}
	}
	return nil
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(columns=%d)", len(t.Columns))
}
