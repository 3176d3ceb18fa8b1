package model

// Table is the loaded dataset. It is never modified after construction:
// every accessor hands out copies, and narrowing a table builds a new one.
type Table struct {
	columns []string
	present map[Field]bool
	records []StudentRecord
}

// NewTable builds a table from header names and records. Both slices are
// copied.
func NewTable(columns []string, records []StudentRecord) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		present: make(map[Field]bool, len(columns)),
		records: append([]StudentRecord(nil), records...),
	}
	for _, c := range columns {
		t.present[Field(c)] = true
	}
	return t
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Columns returns the header names in file order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether f was in the source header. The derived
// Sleep_Group is present whenever the sleep hours column is.
func (t *Table) HasColumn(f Field) bool {
	if f == FieldSleepGroup {
		return t.present[FieldSleep]
	}
	return t.present[f]
}

// Records returns a copy of all records.
func (t *Table) Records() []StudentRecord {
	return append([]StudentRecord(nil), t.records...)
}

// At returns record i by value.
func (t *Table) At(i int) StudentRecord {
	return t.records[i]
}

// Where returns a new table holding the records that satisfy keep.
func (t *Table) Where(keep func(StudentRecord) bool) *Table {
	out := &Table{columns: t.columns, present: t.present}
	for _, r := range t.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Filter narrows the table with f.
func (t *Table) Filter(f Filter) *Table {
	if f.IsZero() {
		return t.Where(func(StudentRecord) bool { return true })
	}
	return t.Where(f.Matches)
}

// Numbers returns the non-missing values of a numeric field.
func (t *Table) Numbers(f Field) []float64 {
	var xs []float64
	for _, r := range t.records {
		if v := r.Number(f); v.Valid {
			xs = append(xs, v.Float64)
		}
	}
	return xs
}

// Distinct returns the distinct non-missing values of a categorical field
// in display order.
func (t *Table) Distinct(f Field) []string {
	seen := make(map[string]bool)
	var values []string
	for _, r := range t.records {
		v := r.Category(f)
		if !v.Valid || seen[v.String] {
			continue
		}
		seen[v.String] = true
		values = append(values, v.String)
	}
	return OrderValues(f, values)
}

// Categories describes every recognised categorical field against this
// table's header.
func (t *Table) Categories() []CategoryInfo {
	infos := make([]CategoryInfo, 0, len(Categories))
	for _, c := range Categories {
		info := CategoryInfo{
			Field:     c.Field,
			Available: t.HasColumn(c.Field),
			Ordered:   len(c.Order) > 0,
		}
		if info.Available {
			info.Values = t.Distinct(c.Field)
		}
		infos = append(infos, info)
	}
	return infos
}
