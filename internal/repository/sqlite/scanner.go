package sqlite

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanTask scans a single task row selected with taskColumns
func scanTask(scanner Scanner) (*taskRow, error) {
	row := &taskRow{}
	err := scanner.Scan(
		&row.ID,
		&row.Name,
		&row.NameKey,
		&row.Description,
		&row.Status,
		&row.CreatedAt,
		&row.UpdatedAt,
		&row.Deleted,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// scanTasks scans multiple task rows
func scanTasks(rows Rows) ([]*taskRow, error) {
	var tasks []*taskRow
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}
