package repository

import (
	"errors"
	"strings"
)

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrNotFound         = errors.New("message not found")
	ErrConcurrentUpdate = errors.New("concurrent update detected")
)

const (
	defaultPageSize = 50
	maxPageSize     = 1000
)

func page(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func orderBy(column string, desc bool) string {
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in a
// column. Use it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
