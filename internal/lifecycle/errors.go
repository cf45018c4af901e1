package lifecycle

import (
	"errors"
	"fmt"

	apperrors "factory-ops/pkg/errors"
)

var (
	ErrInvalidTransition   = errors.New("действие недоступно на текущем шаге создания заявки")
	ErrHeaderIncomplete    = errors.New("заполните завод, отдел, тип заявки и описание")
	ErrPartIncomplete      = errors.New("выберите деталь, количество больше нуля, а для заявки на станок - участок и станок")
	ErrNoParts             = errors.New("добавьте хотя бы одну деталь")
	ErrPartIndexOutOfRange = errors.New("строка заявки с таким номером не найдена")
	ErrDraftNotFound       = fmt.Errorf("черновик заявки: %w", apperrors.ErrNotFound)
)
