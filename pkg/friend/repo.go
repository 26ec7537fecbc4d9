package friend

import (
	"database/sql"
	"errors"
	"fmt"
)

type MySQLRepo struct {
	DB *sql.DB
}

func NewMySQLRepo(db *sql.DB) *MySQLRepo {
	return &MySQLRepo{DB: db}
}

func (r *MySQLRepo) Relation(userID, friendID int64) (string, error) {
	var status string
	err := r.DB.QueryRow(
		"SELECT status FROM friends WHERE user_id = ? AND friend_id = ?",
		userID, friendID,
	).Scan(&status)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query relation: %w", err)
	}
	return status, nil
}
