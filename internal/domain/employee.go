package domain

import "strings"

type Employee struct {
	ID        string   `json:"_id"`
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name"`
	Jobs      []string `json:"jobs" validate:"unique,dive,required"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
