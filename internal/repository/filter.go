package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter carries the common list parameters. A nil OwnerID lists every row.
type ListFilter struct {
	OwnerID *uuid.UUID
	Status  string
	Search  string
	Limit   int
	Offset  int
}

func (f ListFilter) scopeOwner(db *gorm.DB, column string) *gorm.DB {
	if f.OwnerID != nil {
		db = db.Where(column+" = ?", *f.OwnerID)
	}
	return db
}

func (f ListFilter) scopeStatus(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	return db
}

// paginate applies offset/limit; a zero limit returns everything.
func (f ListFilter) paginate(db *gorm.DB) *gorm.DB {
	if f.Offset > 0 {
		db = db.Offset(f.Offset)
	}
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// searchColumns adds a case-insensitive substring match over columns.
// LOWER/LIKE instead of ILIKE keeps it portable to sqlite. Wildcards typed
// by the user match literally.
func searchColumns(db *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return db
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + ") LIKE ? ESCAPE '\\'"
		args[i] = pattern
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}
