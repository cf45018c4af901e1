package utils

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 5
	MaxLimit     = 100
)

// ParsePaginationParams читает page/limit. page < 1 превращается в 1, limit зажимается в [1, MaxLimit].
func ParsePaginationParams(values url.Values, defaultLimit int) (page int, limit int) {
	page = 1
	limit = defaultLimit
	if limit <= 0 {
		limit = DefaultLimit
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}
	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil {
			page = p
		}
	}

	return NormalizePage(page), ClampLimit(limit)
}

func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Offset для 1-индексированной страницы.
func Offset(page, limit int) uint64 {
	return uint64(NormalizePage(page)-1) * uint64(limit)
}

// TotalPages = ceil(total / limit).
func TotalPages(total uint64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + uint64(limit) - 1) / uint64(limit))
}
