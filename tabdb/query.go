package tabdb

// SelectByIntervalExclusive returns data rows where value in column
// is in (low, high) range, in table order.
// Returns nil if there's no such column or no data rows.
// Cells that can't be read as numbers never match.
func (s *Store) SelectByIntervalExclusive(column string, low, high float64) []*Row {
	if s.RecordCount() == 0 {
		return nil
	}
	idx := s.ColumnIndex(column)
	if idx < 0 {
		return nil
	}
	var res []*Row
	// Rows() skips the header
	for _, r := range s.Rows() {
		if idx >= len(r.Cells) {
			continue
		}
		v, err := s.valueOf(r.Cells[idx])
		if err != nil {
			continue
		}
		if low < v && v < high {
			res = append(res, r)
		}
	}
	return res
}
