// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"github.com/go-playground/validator/v10"

	"factory-ops/pkg/constants"
)

// RegisterCustomValidations регистрирует доменные правила валидации в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("order_type", isOrderType); err != nil {
		return err
	}
	if err := v.RegisterValidation("search_mode", isSearchMode); err != nil {
		return err
	}
	return nil
}

func isOrderType(fl validator.FieldLevel) bool {
	return constants.IsValidOrderType(fl.Field().String())
}

// Пустое значение допустимо: режим поиска по умолчанию.
func isSearchMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", constants.SearchModeID, constants.SearchModeDate:
		return true
	}
	return false
}
