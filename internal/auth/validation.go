package auth

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
)

// validate проверяет формат необязательных полей формы.
var validate = validator.New()

// ParseRegisterRequest валидирует форму регистрации и отдает нового пользователя.
// now нужен для проверки даты рождения.
func ParseRegisterRequest(req RegisterRequest, now time.Time) (models.UserRecord, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return models.UserRecord{}, fmt.Errorf("%w, username is required", ErrValidation)
	}

	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return models.UserRecord{}, fmt.Errorf("%w, username must not contain spaces", ErrValidation)
	}

	if strings.TrimSpace(req.Password) == "" {
		return models.UserRecord{}, fmt.Errorf("%w, password is required", ErrValidation)
	}

	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return models.UserRecord{}, ErrPasswordMismatch
	}

	displayName := strings.Join(strings.Fields(req.DisplayName), " ")
	if displayName == "" {
		return models.UserRecord{}, fmt.Errorf("%w, name is required", ErrValidation)
	}

	user := models.UserRecord{
		Username:     username,
		Password:     req.Password,
		DisplayName:  displayName,
		ScoreHistory: []models.SessionResult{},
		CreatedAt:    now,
	}

	if email := strings.TrimSpace(req.Email); email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return models.UserRecord{}, fmt.Errorf("%w, invalid email %q", ErrValidation, email)
		}
		user.Email = email
	}

	if birthday := strings.TrimSpace(req.Birthday); birthday != "" {
		if err := validate.Var(birthday, "datetime="+models.BirthdayLayout); err != nil {
			return models.UserRecord{}, fmt.Errorf("%w, birthday must look like 2016-05-31", ErrValidation)
		}

		date, err := time.Parse(models.BirthdayLayout, birthday)
		if err != nil {
			return models.UserRecord{}, fmt.Errorf("%w, birthday must look like 2016-05-31", ErrValidation)
		}

		if date.After(now) {
			return models.UserRecord{}, fmt.Errorf("%w, birthday is in the future", ErrValidation)
		}
		user.Birthday = &date
	}

	return user, nil
}
