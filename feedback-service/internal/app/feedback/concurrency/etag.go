package concurrency

import (
	"encoding/hex"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var ErrPreconditionFailed = errors.New("precondition failed")

const stampLayout = "2006-01-02T15:04:05.000000"

// Fingerprint - сильный ETag ресурса: BLAKE2b-256 от "<id>|<updated_at UTC, микросекунды>" в кавычках
func Fingerprint(id uuid.UUID, updatedAt time.Time) string {
	payload := id.String() + "|" + updatedAt.UTC().Format(stampLayout)
	sum := blake2b.Sum256([]byte(payload))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// NotModified - If-None-Match совпал с текущим ETag (слабое сравнение)
func NotModified(ifNoneMatch, current string) bool {
	for _, tag := range parseList(ifNoneMatch) {
		if tag == "*" || weak(tag) == weak(current) {
			return true
		}
	}
	return false
}

// CheckPrecondition проверяет If-Match (сильное сравнение).
// Пустой заголовок пропускает проверку, "*" совпадает с любым существующим ресурсом
func CheckPrecondition(ifMatch, current string) error {
	tags := parseList(ifMatch)
	if len(tags) == 0 {
		return nil
	}
	for _, tag := range tags {
		if tag == "*" {
			return nil
		}
		if !strings.HasPrefix(tag, "W/") && tag == current {
			return nil
		}
	}
	return ErrPreconditionFailed
}

func parseList(header string) []string {
	if header == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(header, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func weak(tag string) string {
	return strings.TrimPrefix(tag, "W/")
}

// Pinned - If-Match требует конкретную версию, а не "*" или отсутствие проверки.
// Только в этом случае запись обновляется условно по прочитанному updated_at
func Pinned(ifMatch string) bool {
	tags := parseList(ifMatch)
	return len(tags) > 0 && !slices.Contains(tags, "*")
}
