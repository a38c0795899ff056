package sqlite

// taskRow mirrors one row of the tasks table. Timestamps are kept as the
// stored text and converted by the mapper.
type taskRow struct {
	ID          string
	Name        string
	NameKey     string
	Description string
	Status      string
	CreatedAt   string
	UpdatedAt   string
	Deleted     bool
}

// taskColumns lists the columns read by every task query, in scan order.
const taskColumns = "id, name, name_key, description, status, created_at, updated_at, deleted"
