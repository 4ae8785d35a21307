package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/hikari-signage/hikari/internal/model"
)

func CreateGroup(name string) (model.Group, error) {
	var g model.Group
	if name == "" {
		return g, fmt.Errorf("group name is required")
	}
	err := DB.Get(&g, `
		INSERT INTO groups (id, name, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, name, created_at, updated_at
	`, uuid.NewString(), name)
	return g, err
}

func ListGroups() ([]model.Group, error) {
	var out []model.Group
	err := DB.Select(&out, `
		SELECT id, name, created_at, updated_at
		FROM groups
		ORDER BY name
		`)
	return out, err
}

func GetGroupByID(groupID string) (model.Group, error) {
	var g model.Group
	err := DB.Get(&g, `
		SELECT id, name, created_at, updated_at
		FROM groups
		WHERE id = $1
		`, groupID)
	return g, err
}

func DeleteGroup(groupID string) error {
	res, err := DB.Exec(`DELETE FROM groups WHERE id = $1`, groupID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
