package model

import (
	"github.com/google/uuid"
)

// assignID fills a zero primary key before insert so the same models work on
// postgres and on the sqlite databases used in tests.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
