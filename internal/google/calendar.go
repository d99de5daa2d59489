package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"main/internal/apperrors"
	"main/internal/model"
)

// eventPageSize bounds how many upcoming events one sync mirrors.
const eventPageSize = 15

// Event is the normalized form of one provider event, as returned to API
// clients. Start and End keep the provider's raw representation (RFC 3339
// or a bare date for all-day events).
type Event struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location,omitempty"`
	HTMLLink    string `json:"htmlLink,omitempty"`
	Status      string `json:"status"`
	IsAllDay    bool   `json:"isAllDay"`
}

// ListUpcomingEvents fetches the next page of upcoming events from the
// user's primary calendar: at most eventPageSize single-occurrence events
// starting from now, ordered by start time.
func (c *Client) ListUpcomingEvents(ctx context.Context, accessToken string) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(c.bearerClient(ctx, accessToken)))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	res, err := svc.Events.List("primary").
		MaxResults(eventPageSize).
		OrderBy("startTime").
		SingleEvents(true).
		TimeMin(time.Now().UTC().Format(time.RFC3339)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamSync, err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, NormalizeEvent(item))
	}
	return events, nil
}

// NormalizeEvent flattens one raw calendar event. Missing titles become
// "Untitled" and unknown statuses fall back to confirmed.
func NormalizeEvent(item *calendar.Event) Event {
	start, end := "", ""
	isAllDay := false
	if item.Start != nil {
		start = eventTime(item.Start)
		isAllDay = item.Start.Date != "" && item.Start.DateTime == ""
	}
	if item.End != nil {
		end = eventTime(item.End)
	}

	summary := item.Summary
	if summary == "" {
		summary = "Untitled"
	}

	return Event{
		ID:          item.Id,
		Summary:     summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		Location:    item.Location,
		HTMLLink:    item.HtmlLink,
		Status:      MapStatus(item.Status),
		IsAllDay:    isAllDay,
	}
}

func eventTime(t *calendar.EventDateTime) string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// MapStatus maps a provider status onto the stored enum. Anything
// unrecognized, including an absent status, counts as confirmed.
func MapStatus(raw string) string {
	switch strings.ToLower(raw) {
	case model.StatusCancelled:
		return model.StatusCancelled
	case model.StatusTentative:
		return model.StatusTentative
	default:
		return model.StatusConfirmed
	}
}

// ParseEventTime turns a provider start/end value into a timestamp for the
// mirror. A ten-character value is a date-only all-day marker. Unparseable
// values yield nil rather than failing the sync.
func ParseEventTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	layout := time.RFC3339
	if len(value) == 10 {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil
	}
	return &t
}
