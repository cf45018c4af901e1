package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"factory-ops/pkg/utils"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// SuccessOne - для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func NewListBody[T any](list []T, total uint64, page, limit int) ListBody[T] {
	if list == nil {
		list = make([]T, 0)
	}
	return ListBody[T]{
		List: list,
		Pagination: &PaginationMeta{
			TotalCount: total,
			TotalPages: utils.TotalPages(total, limit),
			Page:       page,
			Limit:      limit,
		},
	}
}

func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, limit int) error {
	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    NewListBody(list, total, page, limit),
	})
}
