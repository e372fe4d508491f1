package graph

import (
	"context"
	"encoding/json"
	"fmt"
	neturl "net/url"
	"strings"
	"time"

	models "github.com/microsoftgraph/msgraph-sdk-go/models"
)

type CalendarService struct{ m *Manager }

func NewCalendarService(m *Manager) *CalendarService { return &CalendarService{m: m} }

// List fetches calendar events inside a time window. Without explicit bounds
// it covers now through now+DaysAhead.
func (s *CalendarService) List(ctx context.Context, in *ListEventsInput, scopes []string, prompt func(string)) (*ListEventsOutput, error) {
	if in.DaysAhead <= 0 {
		in.DaysAhead = 7
	}
	q := neturl.Values{}
	q.Set("$select", "id,subject,start,end,location,organizer,attendees")
	if len(in.OrderBy) > 0 {
		q.Set("$orderby", strings.Join(in.OrderBy, ","))
	} else {
		q.Set("$orderby", "start/dateTime")
	}
	if in.Filter != "" {
		q.Set("$filter", in.Filter)
	} else {
		since, until := in.SinceISO, in.UntilISO
		if since == "" {
			since = time.Now().UTC().Format(time.RFC3339)
		}
		if until == "" {
			untilTime := time.Now().UTC().Add(time.Duration(in.DaysAhead) * 24 * time.Hour)
			until = untilTime.Format(time.RFC3339)
		}
		// start/dateTime is a string field, the bounds must be quoted.
		q.Set("$filter", fmt.Sprintf("start/dateTime ge '%s' and start/dateTime lt '%s'", since, until))
	}

	body, err := s.m.doGet(ctx, in.Account, "/me/events?"+q.Encode(), scopes, prompt)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	var payload struct {
		Value []struct {
			ID         string `json:"id"`
			Subject    string `json:"subject"`
			Start, End struct {
				DateTime string `json:"dateTime"`
			}
			Location struct {
				DisplayName string `json:"displayName"`
			} `json:"location"`
			Organizer struct {
				EmailAddress struct {
					Name    string `json:"name"`
					Address string `json:"address"`
				} `json:"emailAddress"`
			} `json:"organizer"`
			Attendees []struct {
				EmailAddress struct {
					Name    string `json:"name"`
					Address string `json:"address"`
				} `json:"emailAddress"`
			} `json:"attendees"`
		} `json:"value"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	out := &ListEventsOutput{}
	for _, ev := range payload.Value {
		organizer := ev.Organizer.EmailAddress.Name
		if organizer == "" {
			organizer = ev.Organizer.EmailAddress.Address
		}
		var attendees []string
		for _, a := range ev.Attendees {
			name := a.EmailAddress.Name
			if name == "" {
				name = a.EmailAddress.Address
			}
			if name != "" {
				attendees = append(attendees, name)
			}
		}
		out.Events = append(out.Events, CalendarEvent{
			ID:        ev.ID,
			Subject:   ev.Subject,
			StartISO:  ev.Start.DateTime,
			EndISO:    ev.End.DateTime,
			Location:  ev.Location.DisplayName,
			Organizer: organizer,
			Attendees: attendees,
		})
	}
	return out, nil
}

// Create schedules a new event via the Graph SDK models.
func (s *CalendarService) Create(ctx context.Context, in *CreateEventInput, scopes []string, prompt func(string)) (*CalendarEvent, error) {
	client, err := s.m.Client(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	ev := models.NewEvent()
	ev.SetSubject(ptr(in.Subject))
	tz := in.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	start := models.NewDateTimeTimeZone()
	start.SetDateTime(ptr(in.StartISO))
	start.SetTimeZone(ptr(tz))
	end := models.NewDateTimeTimeZone()
	end.SetDateTime(ptr(in.EndISO))
	end.SetTimeZone(ptr(tz))
	ev.SetStart(start)
	ev.SetEnd(end)
	if in.Location != "" {
		loc := models.NewLocation()
		loc.SetDisplayName(ptr(in.Location))
		ev.SetLocation(loc)
	}
	var attendees []models.Attendeeable
	for _, a := range in.Attendees {
		if strings.TrimSpace(a) == "" {
			continue
		}
		email := models.NewEmailAddress()
		email.SetAddress(ptr(strings.TrimSpace(a)))
		att := models.NewAttendee()
		att.SetEmailAddress(email)
		attendees = append(attendees, att)
	}
	if len(attendees) == 0 {
		return nil, fmt.Errorf("at least one attendee is required")
	}
	ev.SetAttendees(attendees)
	if in.BodyText != "" {
		body := models.NewItemBody()
		body.SetContentType(ptr(models.TEXT_BODYTYPE))
		body.SetContent(ptr(in.BodyText))
		ev.SetBody(body)
	}
	created, err := client.Me().Events().Post(ctx, ev, nil)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	out := &CalendarEvent{
		ID:        ptrVal(created.GetId()),
		Subject:   ptrVal(created.GetSubject()),
		StartISO:  dateTimeToISO(created.GetStart()),
		EndISO:    dateTimeToISO(created.GetEnd()),
		Location:  locationName(created.GetLocation()),
		Organizer: organizerAddress(created.GetOrganizer()),
	}
	return out, nil
}

// inviteEndpoints maps the accepted response values to Graph endpoints.
var inviteEndpoints = map[string]string{
	"accept":    "accept",
	"decline":   "decline",
	"tentative": "tentativelyAccept",
}

// Respond answers a meeting invitation with accept, decline or tentative.
func (s *CalendarService) Respond(ctx context.Context, in *RespondEventInput, scopes []string, prompt func(string)) error {
	if in.EventID == "" {
		return fmt.Errorf("eventId is required")
	}
	endpoint, ok := inviteEndpoints[strings.ToLower(in.Response)]
	if !ok {
		return fmt.Errorf("response must be one of accept, decline, or tentative")
	}
	send := true
	if in.SendResponse != nil {
		send = *in.SendResponse
	}
	path := "/me/events/" + neturl.PathEscape(in.EventID) + "/" + endpoint
	payload := map[string]any{"comment": in.Comment, "sendResponse": send}
	if err := s.m.doPost(ctx, in.Account, path, payload, scopes, prompt); err != nil {
		return fmt.Errorf("%s invite: %w", endpoint, err)
	}
	return nil
}

func dateTimeToISO(dt models.DateTimeTimeZoneable) string {
	if dt == nil || dt.GetDateTime() == nil {
		return ""
	}
	return *dt.GetDateTime()
}

func locationName(loc models.Locationable) string {
	if loc == nil || loc.GetDisplayName() == nil {
		return ""
	}
	return *loc.GetDisplayName()
}

func organizerAddress(org models.Recipientable) string {
	if org == nil || org.GetEmailAddress() == nil || org.GetEmailAddress().GetAddress() == nil {
		return ""
	}
	return *org.GetEmailAddress().GetAddress()
}
