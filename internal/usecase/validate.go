package usecase

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/phenrril/newmobile/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct tags and turns the first failure into a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Validation("invalid input: %v", err)
	}
	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return domain.Validation("%s is required", field)
	case "min":
		return domain.Validation("%s needs at least %s entries", field, fe.Param())
	case "gt":
		return domain.Validation("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return domain.Validation("%s must be one of: %s", field, fe.Param())
	case "email":
		return domain.Validation("%s is not a valid email", field)
	}
	return domain.Validation("%s failed %s", field, fe.Tag())
}

// fieldPath drops the leading struct name: "RecordPurchaseInput.Items[0].Quantity" -> "Items[0].Quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
