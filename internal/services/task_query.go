package services

import (
	"strings"
	"time"
	"unicode"

	sq "github.com/Masterminds/squirrel"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

const (
	defaultTaskOrdering    = "created_at DESC"
	invalidUTF8Replacement = "\uFFFD"
)

var (
	taskColumns = []string{
		"id",
		"title",
		"description",
		"status",
		"priority",
		"due_date",
		"created_at",
		"updated_at",
	}

	taskListColumns = []string{
		"id",
		"title",
		"status",
		"priority",
		"due_date",
		"created_at",
	}

	orderableTaskColumns = map[string]struct{}{
		"created_at": {},
		"due_date":   {},
		"priority":   {},
		"status":     {},
	}

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// buildListTasksQuery returns a query over the user's tasks.
// Every filter is ANDed with the owner predicate.
func buildListTasksQuery(userID string, filter ListTasksFilter) (string, []any, error) {
	filter = filter.sanitized()

	qb := sq.Select(taskListColumns...).
		From("tasks").
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar)

	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Priority != "" {
		qb = qb.Where(sq.Eq{"priority": filter.Priority})
	}

	for _, term := range searchTerms(filter.Search) {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		qb = qb.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}

	return qb.OrderBy(parseOrdering(filter.Ordering)...).ToSql()
}

// buildUpdateTaskQuery returns an UPDATE of the owner's task that sets the
// changed fields and updated_at and returns the full row.
func buildUpdateTaskQuery(userID string, taskID int64, changes *taskChanges, now time.Time) (string, []any, error) {
	qb := sq.Update("tasks").PlaceholderFormat(sq.Dollar)

	if changes.title != nil {
		qb = qb.Set("title", *changes.title)
	}
	if changes.description != nil {
		qb = qb.Set("description", *changes.description)
	}
	if changes.status != nil {
		qb = qb.Set("status", *changes.status)
	}
	if changes.priority != nil {
		qb = qb.Set("priority", *changes.priority)
	}
	if changes.setDueDate {
		qb = qb.Set("due_date", dueDateArg(changes.dueDate))
	}

	return qb.Set("updated_at", now).
		Where(sq.Eq{"id": taskID}).
		Where(sq.Eq{"user_id": userID}).
		Suffix("RETURNING " + strings.Join(taskColumns, ", ")).
		ToSql()
}

// parseOrdering turns "-priority,created_at" into ORDER BY clauses.
// Unknown fields are dropped.
func parseOrdering(raw string) []string {
	var clauses []string
	for _, term := range strings.Split(raw, ",") {
		term = strings.TrimSpace(term)
		column, desc := strings.CutPrefix(term, "-")
		if _, ok := orderableTaskColumns[column]; !ok {
			continue
		}

		if desc {
			clauses = append(clauses, column+" DESC")
		} else {
			clauses = append(clauses, column+" ASC")
		}
	}

	if len(clauses) == 0 {
		return []string{defaultTaskOrdering}
	}
	return clauses
}

// sanitized replaces invalid UTF-8 in the filter values, which Postgres
// would reject, so such values simply match nothing.
func (f ListTasksFilter) sanitized() ListTasksFilter {
	f.Status = strings.ToValidUTF8(f.Status, invalidUTF8Replacement)
	f.Priority = strings.ToValidUTF8(f.Priority, invalidUTF8Replacement)
	f.Search = strings.ToValidUTF8(f.Search, invalidUTF8Replacement)
	f.Ordering = strings.ToValidUTF8(f.Ordering, invalidUTF8Replacement)
	return f
}

func searchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func dueDateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}
