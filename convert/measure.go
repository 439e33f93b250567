package convert

// measure returns the number of columns a table needs: the widest row,
// counting the columns claimed by cells spanning down from earlier rows.
func measure(rows [][]entry) int {
	var claimed []int // per column: rows still claimed, including the current one
	width := 0
	for _, row := range rows {
		col := 0
		for _, c := range row {
			for col < len(claimed) && claimed[col] > 0 {
				col++
			}
			for k := col; k < col+c.colspan; k++ {
				for k >= len(claimed) {
					claimed = append(claimed, 0)
				}
				claimed[k] = max(c.rowspan, 1)
			}
			col += c.colspan
		}
		used := col
		for k := col; k < len(claimed); k++ {
			if claimed[k] > 0 {
				used = k + 1
			}
		}
		width = max(width, used)
		for k := range claimed {
			if claimed[k] > 0 {
				claimed[k]--
			}
		}
	}
	return width
}
