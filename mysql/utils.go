package mysql

// FirstRow returns the first row of a TagData result, or (nil, false) if
// the result carries no rows. Mirrors the teacher's GetFirstRow, adapted
// to the fully-materialized Result this client decodes eagerly.
func FirstRow(r Result) (Row, bool) {
	if r.Tag != TagData || len(r.Rows) == 0 {
		return nil, false
	}
	return r.Rows[0], true
}

// LastRow returns the last row of a TagData result, or (nil, false) if
// the result carries no rows.
func LastRow(r Result) (Row, bool) {
	if r.Tag != TagData || len(r.Rows) == 0 {
		return nil, false
	}
	return r.Rows[len(r.Rows)-1], true
}
