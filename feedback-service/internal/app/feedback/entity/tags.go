package entity

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MaxTags      = 20
	MaxTagLength = 64
)

// ErrInvalidInput - общая ошибка валидации входных данных
var ErrInvalidInput = errors.New("invalid input")

// NormalizeTags обрезает пробелы, приводит к нижнему регистру, отбрасывает пустые
// теги и повторы с сохранением порядка первого вхождения.
// Пустой результат возвращается как nil (тегов нет)
func NormalizeTags(tags []string) ([]string, error) {
	if tags == nil {
		return nil, nil
	}
	if len(tags) > MaxTags {
		return nil, fmt.Errorf("%w: tags cannot contain more than %d entries", ErrInvalidInput, MaxTags)
	}

	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		token := strings.ToLower(strings.TrimSpace(t))
		if token == "" {
			continue
		}
		if len([]rune(token)) > MaxTagLength {
			return nil, fmt.Errorf("%w: each tag must be at most %d characters", ErrInvalidInput, MaxTagLength)
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		cleaned = append(cleaned, token)
	}

	if len(cleaned) == 0 {
		return nil, nil
	}
	return cleaned, nil
}

// ParseTagList разбирает фильтр вида "a, B ,,c" в нормализованный список
func ParseTagList(raw string) []string {
	if raw == "" {
		return nil
	}

	var tokens []string
	for _, part := range strings.Split(raw, ",") {
		token := strings.ToLower(strings.TrimSpace(part))
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
