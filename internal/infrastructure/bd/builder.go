package db

import (
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ApplyOptionalEq добавляет равенство для каждого заданного значения.
// nil означает "без фильтра". Ключи сортируются, чтобы SQL не зависел от порядка обхода map.
func ApplyOptionalEq(builder sq.SelectBuilder, columns map[string]*uint64) sq.SelectBuilder {
	keys := make([]string, 0, len(columns))
	for col, val := range columns {
		if val != nil {
			keys = append(keys, col)
		}
	}
	sort.Strings(keys)

	for _, col := range keys {
		builder = builder.Where(sq.Eq{col: *columns[col]})
	}
	return builder
}

// ApplyDayRange ограничивает колонку полуинтервалом [from, to).
func ApplyDayRange(builder sq.SelectBuilder, column string, from, to time.Time) sq.SelectBuilder {
	return builder.
		Where(sq.GtOrEq{column: from}).
		Where(sq.Lt{column: to})
}

// ApplyPage добавляет LIMIT/OFFSET для 1-индексированной страницы.
func ApplyPage(builder sq.SelectBuilder, page, limit int) sq.SelectBuilder {
	if limit <= 0 {
		return builder
	}
	if page < 1 {
		page = 1
	}
	return builder.
		Limit(uint64(limit)).
		Offset(uint64(page-1) * uint64(limit))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ApplyContains добавляет регистронезависимый поиск подстроки. % и _ в term ищутся буквально.
func ApplyContains(builder sq.SelectBuilder, column, term string) sq.SelectBuilder {
	term = strings.TrimSpace(term)
	if term == "" {
		return builder
	}
	return builder.Where(sq.ILike{column: "%" + likeEscaper.Replace(term) + "%"})
}
