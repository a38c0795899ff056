package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"tasklist/internal/domain"
	"tasklist/internal/errors"
)

// Output formats accepted by --output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

type taskView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type pageView struct {
	Content       []taskView `json:"content"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
}

func newTaskView(task *domain.Task) taskView {
	return taskView{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt.UTC(),
		UpdatedAt:   task.UpdatedAt.UTC(),
	}
}

// printer renders tasks in one of the output formats
type printer struct {
	out    io.Writer
	format string
}

func newPrinter(out io.Writer, format string) (*printer, error) {
	switch format {
	case FormatTable, FormatJSON, FormatCSV:
		return &printer{out: out, format: format}, nil
	default:
		return nil, errors.NewInvalidInputError("output", format, "must be table, json or csv")
	}
}

func (p *printer) printTask(task *domain.Task) error {
	return p.printTasks([]*domain.Task{task}, nil)
}

func (p *printer) printPage(page *domain.TaskPage) error {
	return p.printTasks(page.Tasks, page)
}

func (p *printer) printTasks(tasks []*domain.Task, page *domain.TaskPage) error {
	views := make([]taskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, newTaskView(task))
	}

	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		if page == nil {
			return enc.Encode(views[0])
		}
		return enc.Encode(pageView{
			Content:       views,
			Page:          page.Page,
			Size:          page.Size,
			TotalElements: page.TotalElements,
			TotalPages:    page.TotalPages(),
		})
	case FormatCSV:
		return p.writeCSV(views)
	default:
		return p.writeTable(views, page)
	}
}

func (p *printer) writeCSV(views []taskView) error {
	writer := csv.NewWriter(p.out)

	if err := writer.Write([]string{"ID", "Name", "Description", "Status", "Created At", "Updated At"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, v := range views {
		row := []string{v.ID, v.Name, v.Description, v.Status, v.CreatedAt.Format(time.RFC3339), v.UpdatedAt.Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (p *printer) writeTable(views []taskView, page *domain.TaskPage) error {
	if page != nil && len(views) == 0 {
		_, err := fmt.Fprintln(p.out, "No tasks found")
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCREATED\tUPDATED\tDESCRIPTION")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, v.Status,
			v.CreatedAt.Format(time.DateTime), v.UpdatedAt.Format(time.DateTime),
			v.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if page != nil {
		_, err := fmt.Fprintf(p.out, "\npage %d of %d (%d tasks)\n", page.Page+1, max(page.TotalPages(), 1), page.TotalElements)
		return err
	}
	return nil
}
