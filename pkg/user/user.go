package user

type User struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
	Password string `json:"-" bson:"-"`
}

type Repository interface {
	Create(user *User) error
	FindByUsername(username string) (*User, error)
	FindByID(id int64) (*User, error)
}
