package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/EanHD/homework-app/internal/model"
)

type ClassStore struct {
	db *sql.DB
}

func NewClassStore(db *sql.DB) *ClassStore {
	return &ClassStore{db: db}
}

const classCols = `id, name, emoji, created_at, updated_at`

func scanClass(scanner interface{ Scan(...any) error }) (*model.Class, error) {
	var c model.Class
	if err := scanner.Scan(&c.ID, &c.Name, &c.Emoji, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClassStore) List() ([]model.Class, error) {
	rows, err := s.db.Query(`SELECT ` + classCols + ` FROM classes ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, *c)
	}
	return classes, rows.Err()
}

func (s *ClassStore) GetByID(id string) (*model.Class, error) {
	row := s.db.QueryRow(`SELECT `+classCols+` FROM classes WHERE id = ?`, id)
	c, err := scanClass(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	return c, nil
}

func (s *ClassStore) Create(name, emoji string) (*model.Class, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO classes (id, name, emoji) VALUES (?, ?, ?)`,
		id, name, emoji,
	)
	if err != nil {
		return nil, fmt.Errorf("insert class: %w", err)
	}
	return s.GetByID(id)
}

func (s *ClassStore) Update(id, name, emoji string) (*model.Class, error) {
	_, err := s.db.Exec(
		`UPDATE classes SET name = ?, emoji = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, emoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update class: %w", err)
	}
	return s.GetByID(id)
}

// ReplaceAll swaps the full class set inside one transaction. Used by backup
// import; runs before the assignment import so class references resolve.
func (s *ClassStore) ReplaceAll(classes []model.Class) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace classes: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM classes`); err != nil {
		return fmt.Errorf("clear classes: %w", err)
	}

	for _, c := range classes {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := tx.Exec(
			`INSERT INTO classes (id, name, emoji) VALUES (?, ?, ?)`,
			id, c.Name, c.Emoji,
		)
		if err != nil {
			return fmt.Errorf("insert class %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace classes: %w", err)
	}
	return nil
}

func (s *ClassStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM classes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}
