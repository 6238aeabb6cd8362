package domain

import "time"

type User struct {
	Id       UserId
	Email    Email
	PassHash string
	Created  time.Time
}
