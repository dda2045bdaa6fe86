package service

import (
	"strings"
	"unicode/utf8"

	"coupon-command/internal/model"
)

func checkCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return model.ErrCommandRequired
	}
	if utf8.RuneCountInString(command) > model.MaxCommandLength {
		return model.ErrCommandTooLong
	}
	return nil
}

// checkUserID validates userID. An empty value passes unless required is set.
func checkUserID(userID string, required bool) error {
	if strings.TrimSpace(userID) == "" {
		if required {
			return model.ErrUserIDRequired
		}
		return nil
	}
	if utf8.RuneCountInString(userID) > model.MaxUserIDLength {
		return model.ErrUserIDTooLong
	}
	return nil
}
