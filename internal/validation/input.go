package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/eustad-backend/internal/models"
)

// Константы валидации
const (
	MinNameLength           = 2
	MaxNameLength           = 100
	MaxCityLength           = 100
	MaxAddressLength        = 255
	MaxSkillsLength         = 500
	MaxBioLength            = 1000
	MinGigTitleLength       = 3
	MaxGigTitleLength       = 120
	MaxGigDescriptionLength = 2000
	MinPrice                = 0.0
	MaxPrice                = 10000000.0
	MinCommentLength        = 1
	MaxCommentLength        = 1000
	MaxBookingMessageLength = 2000
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneRegex       = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,19}$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("email format is invalid")
	}

	localPart, domainPart := parts[0], parts[1]
	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("email local part must be 1 to 64 characters")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("email domain must be 1 to 255 characters")
	}
	if !emailLocalRegex.MatchString(localPart) || !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("email format is invalid")
	}

	return nil
}

// ValidateName проверяет имя пользователя.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	return ValidateLength("name", name, MinNameLength, MaxNameLength)
}

// ValidatePhone проверяет номер телефона: цифры, пробелы, скобки и дефисы, опционально ведущий +.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("phone format is invalid")
	}
	return nil
}

// ValidateCity проверяет обязательный город.
func ValidateCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return fmt.Errorf("city is required")
	}
	return ValidateLength("city", city, 0, MaxCityLength)
}

// ValidateOptional проверяет длину необязательного поля.
func ValidateOptional(fieldName string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return ValidateLength(fieldName, strings.TrimSpace(*value), 0, max)
}

// ValidateCategory проверяет, что категория входит в справочник.
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category is required")
	}
	if _, ok := models.ValidCategories[category]; !ok {
		return fmt.Errorf("category %q is not supported", category)
	}
	return nil
}

// ValidateGigTitle проверяет заголовок объявления.
func ValidateGigTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	return ValidateLength("title", title, MinGigTitleLength, MaxGigTitleLength)
}

// ValidatePrice проверяет цену объявления.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("price must be a finite number")
	}
	if price < MinPrice {
		return fmt.Errorf("price cannot be negative")
	}
	if price > MaxPrice {
		return fmt.Errorf("price cannot exceed %.0f", MaxPrice)
	}
	return nil
}

// ValidateComment проверяет текст комментария.
func ValidateComment(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("text is required")
	}
	return ValidateLength("text", text, MinCommentLength, MaxCommentLength)
}
