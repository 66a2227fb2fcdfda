package query

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// EncodeCursor кодирует смещение в URL-safe base64 десятичной записи
func EncodeCursor(offset int) string {
	return base64.URLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// DecodeCursor восстанавливает смещение. Пустой курсор означает 0
func DecodeCursor(token string) (int, error) {
	if token == "" {
		return 0, nil
	}

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	offset, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: not an integer offset", ErrInvalidCursor)
	}
	if offset < 0 {
		return 0, fmt.Errorf("%w: negative offset", ErrInvalidCursor)
	}

	return offset, nil
}
