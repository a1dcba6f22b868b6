package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Валидация и бизнес-правила
	ErrValidationFailed        = errors.New("validation failed")
	ErrPlayerNameRequired      = errors.New("player name is required")
	ErrPlayerNameTooLong       = errors.New("player name is too long")
	ErrPlayerNameInappropriate = errors.New("player name is not allowed")
	ErrUnsupportedAvatarType   = errors.New("avatar must be a jpeg, png, gif or webp image")
	ErrInvalidEdition          = errors.New("invalid edition")
	ErrInvalidGame             = errors.New("invalid game definition")
	ErrEmptyImport             = errors.New("nothing to import")

	// Сущности
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrMatchNotFound  = errors.New("match not found")

	// Жизненный цикл матча
	ErrMatchCreationFailed = errors.New("failed to store match")
	ErrMatchDeleteFailed   = errors.New("failed to delete match")
	ErrPartialApply        = errors.New("some standings were not updated")
	ErrResetIncomplete     = errors.New("edition reset did not complete")

	// Доступ
	ErrInvalidCredentials = errors.New("invalid passcode")
	ErrAuthNotConfigured  = errors.New("admin access is not configured")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Комментатор
	ErrNarratorUnavailable = errors.New("narrator is unavailable")
	ErrNoSpeech            = errors.New("no commentary has been spoken yet")
)
