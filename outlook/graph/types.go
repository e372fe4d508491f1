package graph

// Tool I/O types shared between the graph services and the MCP layer.

type Account struct {
	// Alias identifies a stored account (e.g. "work", "personal").
	Alias    string `json:"alias" description:"account name"`
	TenantID string `json:"-" internal:"true"`
}

// Message carries the mailbox fields the priority scorer consumes, still in
// wire form. Timestamps stay as strings here; normalization parses them.
type Message struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	FromName    string `json:"fromName,omitempty"`
	From        string `json:"from,omitempty"`
	ReceivedISO string `json:"receivedISO,omitempty"`
	Importance  string `json:"importance,omitempty"`
	IsRead      bool   `json:"isRead"`
	FlagStatus  string `json:"flagStatus,omitempty"`
	// DueISO/DueTimeZone come from flag.dueDateTime; the zone may be a
	// Windows zone name, UTC is the fallback.
	DueISO      string `json:"dueISO,omitempty"`
	DueTimeZone string `json:"dueTimeZone,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
}

type ListMailInput struct {
	Account Account `json:"account"`
	Top     int     `json:"top,omitempty" description:"number of messages to return"`
	// Optional ISO8601 (RFC3339) date-time filters on received time.
	SinceISO string `json:"sinceISO,omitempty" description:"receivedDateTime >= this timestamp (inclusive)"`
	UntilISO string `json:"untilISO,omitempty" description:"receivedDateTime <= this timestamp (inclusive)"`
	// Advanced OData options. If set, these override the derived filters/order from the fields above.
	Filter  string   `json:"filter,omitempty" description:"OData $filter expression (e.g., isRead eq false)"`
	OrderBy []string `json:"orderBy,omitempty" description:"OData $orderby fields (e.g., ['receivedDateTime DESC'])"`
}

type ListMailOutput struct {
	Messages []Message `json:"messages,omitempty"`
}

type SendEmailInput struct {
	Account    Account  `json:"account"`
	To         []string `json:"to"`
	Cc         []string `json:"cc,omitempty"`
	Bcc        []string `json:"bcc,omitempty"`
	Subject    string   `json:"subject"`
	BodyText   string   `json:"bodyText,omitempty"`
	BodyHTML   string   `json:"bodyHtml,omitempty"`
	Importance string   `json:"importance,omitempty"` // Low, Normal, High
}

type ReplyMailInput struct {
	Account   Account `json:"account"`
	MessageID string  `json:"messageId"`
	Comment   string  `json:"comment,omitempty"`
	ReplyAll  bool    `json:"replyAll,omitempty"`
}

type ForwardMailInput struct {
	Account   Account  `json:"account"`
	MessageID string   `json:"messageId"`
	Comment   string   `json:"comment,omitempty"`
	To        []string `json:"to"`
}

type CalendarEvent struct {
	ID        string   `json:"id"`
	Subject   string   `json:"subject"`
	StartISO  string   `json:"startISO"`
	EndISO    string   `json:"endISO"`
	Location  string   `json:"location,omitempty"`
	Organizer string   `json:"organizer,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

type ListEventsInput struct {
	Account Account `json:"account"`
	// List events between now and now+DaysAhead (default 7) unless
	// Since/Until override the window.
	DaysAhead int    `json:"daysAhead,omitempty"`
	SinceISO  string `json:"sinceISO,omitempty"`
	UntilISO  string `json:"untilISO,omitempty"`
	// Advanced OData options for filtering/sorting events.
	Filter  string   `json:"filter,omitempty" description:"OData $filter for events"`
	OrderBy []string `json:"orderBy,omitempty" description:"OData $orderby fields"`
}

type ListEventsOutput struct {
	Events []CalendarEvent `json:"events,omitempty"`
}

type CreateEventInput struct {
	Account   Account  `json:"account"`
	Subject   string   `json:"subject"`
	StartISO  string   `json:"startISO"`
	EndISO    string   `json:"endISO"`
	TimeZone  string   `json:"timeZone,omitempty"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
	BodyText  string   `json:"bodyText,omitempty"`
}

type RespondEventInput struct {
	Account Account `json:"account"`
	EventID string  `json:"eventId"`
	// Response is one of accept, decline, tentative.
	Response     string `json:"response"`
	Comment      string `json:"comment,omitempty"`
	SendResponse *bool  `json:"sendResponse,omitempty"`
}
