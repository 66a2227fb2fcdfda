package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
)

const (
	profileCollectionPath = "/feedback/profile"
	appCollectionPath     = "/feedback/app"
	jobCollectionPath     = "/feedback/jobs"
)

// relativeURL собирает относительную ссылку; пустой набор параметров дает путь без "?"
func relativeURL(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	if encoded := params.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// override возвращает копию params, где ключи из set заменены, а ключи из drop удалены
func override(params url.Values, set map[string]string, drop ...string) url.Values {
	out := make(url.Values, len(params)+len(set))
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	for _, k := range drop {
		out.Del(k)
	}
	for k, v := range set {
		out.Set(k, v)
	}
	return out
}

func profileLinks(f *entity.ProfileFeedback) map[string]string {
	reviewee := f.RevieweeProfileID.String()
	links := map[string]string{
		"self":              profileCollectionPath + "/" + f.ID.String(),
		"collection":        profileCollectionPath,
		"reviewee_feedback": relativeURL(profileCollectionPath, url.Values{"reviewee_profile_id": {reviewee}}),
		"reviewer_feedback": relativeURL(profileCollectionPath, url.Values{"reviewer_profile_id": {f.ReviewerProfileID.String()}}),
		"stats":             relativeURL(profileCollectionPath+"/stats", url.Values{"reviewee_profile_id": {reviewee}}),
	}
	if f.MatchID != nil {
		links["match_feedback"] = relativeURL(profileCollectionPath, url.Values{"match_id": {f.MatchID.String()}})
	}
	return links
}

func appLinks(f *entity.AppFeedback) map[string]string {
	links := map[string]string{
		"self":       appCollectionPath + "/" + f.ID.String(),
		"collection": appCollectionPath,
		"stats":      appCollectionPath + "/stats",
	}
	if f.AuthorProfileID != nil {
		links["author_feedback"] = relativeURL(appCollectionPath, url.Values{"author_profile_id": {f.AuthorProfileID.String()}})
	}
	return links
}

// collectionLinks строит self/next/prev для страницы, сохраняя остальные параметры запроса.
// Режим ссылок совпадает с режимом запроса: cursor или offset
func collectionLinks(path string, params url.Values, p entity.Pagination) map[string]string {
	links := map[string]string{
		"self":       relativeURL(path, params),
		"collection": path,
	}

	page := func(cursor *string, offset *int) (string, bool) {
		switch {
		case cursor != nil:
			return relativeURL(path, override(params, map[string]string{"cursor": *cursor}, "offset")), true
		case offset != nil:
			return relativeURL(path, override(params, map[string]string{"offset": strconv.Itoa(*offset)}, "cursor")), true
		}
		return "", false
	}

	if next, ok := page(p.NextCursor, p.NextOffset); ok {
		links["next"] = next
	}
	if prev, ok := page(p.PreviousCursor, p.PreviousOffset); ok {
		links["prev"] = prev
	}
	return links
}

// statsLinks - self и список отзывов с теми же фильтрами
func statsLinks(path, collection string, params url.Values) map[string]string {
	return map[string]string{
		"self":             relativeURL(path, params),
		"related_feedback": relativeURL(collection, params),
	}
}

func jobLinks(job *entity.AnalysisJob) map[string]string {
	links := map[string]string{
		"self":       jobCollectionPath + "/" + job.ID.String(),
		"collection": jobCollectionPath,
	}

	// Ссылка на синхронный /stats с теми же фильтрами, что и у задачи
	params := url.Values{}
	if len(job.Tags) > 0 {
		params.Set("tags", strings.Join(job.Tags, ","))
	}
	if job.Since != nil {
		params.Set("since", job.Since.UTC().Format(time.RFC3339Nano))
	}

	switch job.JobType {
	case entity.JobTypeProfileStats:
		if job.TargetID != nil {
			params.Set("reviewee_profile_id", job.TargetID.String())
			links["stats"] = relativeURL(profileCollectionPath+"/stats", params)
		}
	case entity.JobTypeAppStats:
		links["stats"] = relativeURL(appCollectionPath+"/stats", params)
	}
	return links
}
