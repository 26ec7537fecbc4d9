package friend

const (
	StatusAccepted = "ACCEPTED"
	StatusBlocked  = "BLOCKED"
)

type Repository interface {
	// Relation returns the status of the edge userID -> friendID, or
	// "" when no edge exists.
	Relation(userID, friendID int64) (string, error)
}
