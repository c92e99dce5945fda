// Package contact нормализует и проверяет контактные данные клиента.
package contact

import (
	"fmt"
	"regexp"
	"strings"
)

// InvalidContactError телефон или email не прошёл нормализацию
type InvalidContactError struct {
	Field string // "phone" или "email"
	Value string
}

func (e *InvalidContactError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

var (
	e164Pattern  = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	digitsOnly   = regexp.MustCompile(`\D`)
	emailPattern = regexp.MustCompile(`^[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~.-]+@[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*\.[a-z]{2,63}$`)
)

// NormalizePhone приводит телефон к E.164.
// Номер с ведущим "+" принимается как есть после проверки формата.
// 10-значный (или 11-значный с ведущей единицей) североамериканский номер
// без "+" нормализуется в "+1XXXXXXXXXX". Остальное — ошибка.
func NormalizePhone(text string) (string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", &InvalidContactError{Field: "phone", Value: text}
	}

	if strings.HasPrefix(s, "+") {
		candidate := "+" + digitsOnly.ReplaceAllString(s[1:], "")
		if !e164Pattern.MatchString(candidate) {
			return "", &InvalidContactError{Field: "phone", Value: text}
		}
		return candidate, nil
	}

	digits := digitsOnly.ReplaceAllString(s, "")
	switch {
	case len(digits) == 10:
		return "+1" + digits, nil
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, nil
	}
	return "", &InvalidContactError{Field: "phone", Value: text}
}

// NormalizeEmail приводит email к нижнему регистру и проверяет
// консервативным шаблоном: непустая локальная часть без точки по краям,
// домен с TLD длиной 2-63 символа.
func NormalizeEmail(text string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" || strings.HasPrefix(s, ".") {
		return "", &InvalidContactError{Field: "email", Value: text}
	}
	local, _, found := strings.Cut(s, "@")
	if !found || local == "" || strings.HasSuffix(local, ".") {
		return "", &InvalidContactError{Field: "email", Value: text}
	}
	if !emailPattern.MatchString(s) {
		return "", &InvalidContactError{Field: "email", Value: text}
	}
	return s, nil
}
