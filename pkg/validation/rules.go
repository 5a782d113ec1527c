package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("custom_email", isGoodEmailFormat); err != nil {
		return err
	}
	if err := v.RegisterValidation("contact_name", isRealContactName); err != nil {
		return err
	}
	if err := v.RegisterValidation("permit_number", isPermitNumber); err != nil {
		return err
	}
	return nil
}

// isGoodEmailFormat - проверка email; строка "None" из выгрузок не считается адресом.
func isGoodEmailFormat(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "None" && emailRegex.MatchString(s)
}

// isRealContactName - имя контакта, а не заглушка "OUT TO BID" из реестра разрешений.
func isRealContactName(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "" && !strings.EqualFold(s, "OUT TO BID")
}

// isPermitNumber - номер разрешения не пустой после обрезки пробелов. Формат не проверяется:
// в реестрах встречаются "BP 2024-001" и "BP#7".
func isPermitNumber(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
