package materials

import "time"

type Material struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description *string
	Unit        string // kg, t, un... как ввёл владелец
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Input - поля, которые пользователь задаёт при создании и изменении.
type Input struct {
	Name        string
	Description *string
	Unit        string
}
