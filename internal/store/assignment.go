package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/EanHD/homework-app/internal/model"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

const assignmentCols = `a.id, a.class_id, COALESCE(c.name, ''), a.title, a.notes, a.due_at,
	a.completed, a.completed_at, a.remind_at_minutes, a.created_at, a.updated_at`

const assignmentFrom = ` FROM assignments a LEFT JOIN classes c ON c.id = a.class_id `

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var classID sql.NullString
	var completedAt sql.NullTime
	var remindAt sql.NullInt64
	var completed int
	err := scanner.Scan(&a.ID, &classID, &a.ClassName, &a.Title, &a.Notes, &a.DueAt,
		&completed, &completedAt, &remindAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.ClassID = classID.String
	a.Completed = completed != 0
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if remindAt.Valid {
		m := int(remindAt.Int64)
		a.RemindAtMinutes = &m
	}
	return &a, nil
}

func collectAssignments(rows *sql.Rows) ([]model.Assignment, error) {
	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func (s *AssignmentStore) List() ([]model.Assignment, error) {
	rows, err := s.db.Query(`SELECT ` + assignmentCols + assignmentFrom + `ORDER BY a.due_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// ListActive returns assignments that are not completed, the scheduling
// input set for the reminder scheduler.
func (s *AssignmentStore) ListActive() ([]model.Assignment, error) {
	rows, err := s.db.Query(`SELECT ` + assignmentCols + assignmentFrom + `WHERE a.completed = 0 ORDER BY a.due_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (s *AssignmentStore) GetByID(id string) (*model.Assignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+assignmentFrom+`WHERE a.id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *AssignmentStore) Create(classID, title, notes string, dueAt time.Time, remindAtMinutes *int) (*model.Assignment, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO assignments (id, class_id, title, notes, due_at, remind_at_minutes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, nullString(classID), title, notes, dueAt.UTC(), nullInt(remindAtMinutes),
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	return s.GetByID(id)
}

func (s *AssignmentStore) Update(id, classID, title, notes string, dueAt time.Time, remindAtMinutes *int) (*model.Assignment, error) {
	_, err := s.db.Exec(
		`UPDATE assignments
		 SET class_id = ?, title = ?, notes = ?, due_at = ?, remind_at_minutes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullString(classID), title, notes, dueAt.UTC(), nullInt(remindAtMinutes), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	return s.GetByID(id)
}

// SetCompleted marks an assignment done or not done, stamping completed_at
// when completing and clearing it when undoing.
func (s *AssignmentStore) SetCompleted(id string, completed bool, at time.Time) (*model.Assignment, error) {
	var completedAt any
	completedInt := 0
	if completed {
		completedInt = 1
		completedAt = at.UTC()
	}
	_, err := s.db.Exec(
		`UPDATE assignments SET completed = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		completedInt, completedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set assignment completed: %w", err)
	}
	return s.GetByID(id)
}

func (s *AssignmentStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// ReplaceAll swaps the full assignment set inside one transaction. Used by
// backup import; reminder fields are written back exactly as exported.
func (s *AssignmentStore) ReplaceAll(assignments []model.Assignment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace assignments: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM assignments`); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}

	for _, a := range assignments {
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		var completedAt any
		if a.CompletedAt != nil {
			completedAt = a.CompletedAt.UTC()
		}
		completedInt := 0
		if a.Completed {
			completedInt = 1
		}
		_, err := tx.Exec(
			`INSERT INTO assignments (id, class_id, title, notes, due_at, completed, completed_at, remind_at_minutes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, nullString(a.ClassID), a.Title, a.Notes, a.DueAt.UTC(), completedInt, completedAt, nullInt(a.RemindAtMinutes),
		)
		if err != nil {
			return fmt.Errorf("insert assignment %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace assignments: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
