package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/zbarettnymbl/Deep-Agent/outlook/graph"
	"github.com/zbarettnymbl/Deep-Agent/outlook/priority"
)

//go:embed tools/outlookListMail.md
var outlookListMailDesc string

//go:embed tools/outlookSendMail.md
var outlookSendMailDesc string

//go:embed tools/outlookReplyMail.md
var outlookReplyMailDesc string

//go:embed tools/outlookForwardMail.md
var outlookForwardMailDesc string

//go:embed tools/outlookListEvents.md
var outlookListEventsDesc string

//go:embed tools/outlookCreateEvent.md
var outlookCreateEventDesc string

//go:embed tools/outlookRespondEvent.md
var outlookRespondEventDesc string

//go:embed tools/outlookCreateTask.md
var outlookCreateTaskDesc string

//go:embed tools/outlookTopPriorities.md
var outlookTopPrioritiesDesc string

//go:embed tools/outlookFollowUps.md
var outlookFollowUpsDesc string

//go:embed tools/outlookDailyBriefing.md
var outlookDailyBriefingDesc string

// candidateFetchTop caps how many mailbox messages the scoring tools pull
// before ranking locally.
const candidateFetchTop = 50

func registerTools(base *protoserver.DefaultHandler, h *Handler) error {
	svc := h.service
	ops := h.ops

	// Non-blocking OOB device login: park a pending auth, kick off the device
	// flow, and elicit the login page URL to the client.
	startOOB := func(ctx context.Context, alias, tenant string) {
		if ops == nil || !ops.Implements(schema.MethodElicitationCreate) {
			return
		}
		ns := "default"
		if v, err := svc.auth.Namespace(ctx); err == nil && v != "" {
			ns = v
		}
		id := newUUID()
		svc.Pending().Put(NewPendingAuth(id, alias, tenant, ns))
		svc.GraphManager().StartDeviceLogin(context.Background(), alias, tenant, graph.DefaultScopes(), func() {
			svc.Pending().Complete(id)
		})
		loginURL := fmt.Sprintf("%s/outlook/auth/device/%s", strings.TrimRight(svc.BaseURL(), "/"), id)
		go func() {
			ctx2, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_, _ = ops.Elicit(ctx2, &jsonrpc.TypedRequest[*schema.ElicitRequest]{Request: &schema.ElicitRequest{
				Params: schema.ElicitRequestParams{ElicitationId: id, Message: "Sign in to Outlook", Mode: string(schema.ElicitRequestParamsModeUrl), Url: loginURL},
			}})
		}()
	}

	// prepare validates the account, fills the default tenant and launches the
	// OOB login when no cached credential can serve the call.
	prepare := func(ctx context.Context, account *graph.Account) *jsonrpc.Error {
		if account.Alias == "" {
			return jsonrpc.NewError(jsonrpc.InvalidParams, "account.alias is required", nil)
		}
		if account.TenantID == "" {
			account.TenantID = svc.TenantID()
		}
		if svc.GraphManager().NeedsInteractive(ctx, account.Alias, account.TenantID, graph.DefaultScopes()) {
			startOOB(ctx, account.Alias, account.TenantID)
		}
		return nil
	}

	mailSvc := graph.NewMailService(svc.GraphManager())
	calSvc := graph.NewCalendarService(svc.GraphManager())
	taskSvc := graph.NewTaskService(svc.GraphManager())

	// List mail
	if err := protoserver.RegisterTool[*graph.ListMailInput, *graph.ListMailOutput](base.Registry, "outlookListMail", outlookListMailDesc, func(ctx context.Context, in *graph.ListMailInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		out, err := mailSvc.List(ctx, in, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Send mail
	if err := protoserver.RegisterTool[*graph.SendEmailInput, *struct{}](base.Registry, "outlookSendMail", outlookSendMailDesc, func(ctx context.Context, in *graph.SendEmailInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		if err := mailSvc.Send(ctx, in, graph.DefaultScopes(), nil); err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, map[string]any{"status": "sent"})
	}); err != nil {
		return err
	}

	// Reply to a message
	if err := protoserver.RegisterTool[*graph.ReplyMailInput, *struct{}](base.Registry, "outlookReplyMail", outlookReplyMailDesc, func(ctx context.Context, in *graph.ReplyMailInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		if in.MessageID == "" {
			return buildErrorResult("messageId is required")
		}
		if err := mailSvc.Reply(ctx, in, graph.DefaultScopes(), nil); err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, map[string]any{"status": "replied"})
	}); err != nil {
		return err
	}

	// Forward a message
	if err := protoserver.RegisterTool[*graph.ForwardMailInput, *struct{}](base.Registry, "outlookForwardMail", outlookForwardMailDesc, func(ctx context.Context, in *graph.ForwardMailInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		if in.MessageID == "" {
			return buildErrorResult("messageId is required")
		}
		if len(in.To) == 0 {
			return buildErrorResult("at least one forward recipient is required")
		}
		if err := mailSvc.Forward(ctx, in, graph.DefaultScopes(), nil); err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, map[string]any{"status": "forwarded"})
	}); err != nil {
		return err
	}

	// List events
	if err := protoserver.RegisterTool[*graph.ListEventsInput, *graph.ListEventsOutput](base.Registry, "outlookListEvents", outlookListEventsDesc, func(ctx context.Context, in *graph.ListEventsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		out, err := calSvc.List(ctx, in, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Create event
	if err := protoserver.RegisterTool[*graph.CreateEventInput, *graph.CalendarEvent](base.Registry, "outlookCreateEvent", outlookCreateEventDesc, func(ctx context.Context, in *graph.CreateEventInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		out, err := calSvc.Create(ctx, in, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Respond to an invite
	if err := protoserver.RegisterTool[*graph.RespondEventInput, *struct{}](base.Registry, "outlookRespondEvent", outlookRespondEventDesc, func(ctx context.Context, in *graph.RespondEventInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		if in.EventID == "" {
			return buildErrorResult("eventId is required")
		}
		if err := calSvc.Respond(ctx, in, graph.DefaultScopes(), nil); err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, map[string]any{"status": in.Response})
	}); err != nil {
		return err
	}

	// Create task
	if err := protoserver.RegisterTool[*graph.CreateTaskInput, *graph.Task](base.Registry, "outlookCreateTask", outlookCreateTaskDesc, func(ctx context.Context, in *graph.CreateTaskInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		out, err := taskSvc.Create(ctx, in, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Top priorities
	if err := protoserver.RegisterTool[*TopPrioritiesInput, *TopPrioritiesOutput](base.Registry, "outlookTopPriorities", outlookTopPrioritiesDesc, func(ctx context.Context, in *TopPrioritiesInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		limit := resolveLimit(in.Limit, 5, 25)
		out := &TopPrioritiesOutput{Limit: limit, Emails: []PriorityEmail{}}
		if limit == 0 {
			return buildTextResult(svc, formatPriorities(out.Emails), out)
		}
		now := time.Now().UTC()
		since, until := in.SinceISO, in.UntilISO
		if since == "" && until == "" {
			start, end := graph.PreviousWorkdayRange(now)
			since = start.Format(time.RFC3339)
			until = end.Format(time.RFC3339)
		}
		listOut, err := mailSvc.List(ctx, &graph.ListMailInput{Account: in.Account, Top: candidateFetchTop, SinceISO: since, UntilISO: until}, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		scored := svc.Scorer().TopK(graph.NormalizeAll(listOut.Messages), limit, now)
		for _, s := range scored {
			rec := PriorityEmail{Subject: s.Subject, Sender: s.SenderName, SenderEmail: s.SenderAddress, Importance: s.Importance, Score: s.Score, Reasons: s.Reasons}
			if !s.Received.IsZero() {
				rec.Received = s.Received.Format(time.RFC3339)
			}
			if !s.DueAt.IsZero() {
				rec.DueBy = s.DueAt.Format(time.RFC3339)
			}
			out.Emails = append(out.Emails, rec)
		}
		return buildTextResult(svc, formatPriorities(out.Emails), out)
	}); err != nil {
		return err
	}

	// Follow-up recommendations
	if err := protoserver.RegisterTool[*FollowUpsInput, *FollowUpsOutput](base.Registry, "outlookFollowUps", outlookFollowUpsDesc, func(ctx context.Context, in *FollowUpsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		limit := resolveLimit(in.Limit, 5, 20)
		out := &FollowUpsOutput{Items: []FollowUpItem{}}
		if limit == 0 {
			return buildTextResult(svc, formatFollowUps(out.Items), out)
		}
		now := time.Now().UTC()
		listOut, err := mailSvc.List(ctx, &graph.ListMailInput{
			Account: in.Account,
			Top:     candidateFetchTop,
			Filter:  "isRead eq false or flag/flagStatus eq 'flagged'",
		}, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		ranked := priority.Rank(graph.NormalizeAll(listOut.Messages), limit, now)
		for _, f := range ranked {
			it := FollowUpItem{Subject: f.Subject, Sender: f.Sender, Importance: f.Importance, Status: followUpStatus(f), MessageID: f.MessageID, Reasons: f.Reasons}
			if !f.Received.IsZero() {
				it.Received = f.Received.Format(time.RFC3339)
			}
			out.Items = append(out.Items, it)
		}
		return buildTextResult(svc, formatFollowUps(out.Items), out)
	}); err != nil {
		return err
	}

	// Daily briefing
	if err := protoserver.RegisterTool[*BriefingInput, *BriefingOutput](base.Registry, "outlookDailyBriefing", outlookDailyBriefingDesc, func(ctx context.Context, in *BriefingInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if jerr := prepare(ctx, &in.Account); jerr != nil {
			return nil, jerr
		}
		now := time.Now().UTC()
		start, end := graph.PreviousWorkdayRange(now)
		mailOut, err := mailSvc.List(ctx, &graph.ListMailInput{Account: in.Account, Top: candidateFetchTop, SinceISO: start.Format(time.RFC3339), UntilISO: end.Format(time.RFC3339)}, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		evOut, err := calSvc.List(ctx, &graph.ListEventsInput{Account: in.Account, DaysAhead: 1}, graph.DefaultScopes(), nil)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		emails := graph.NormalizeAll(mailOut.Messages)
		scored := svc.Scorer().TopK(emails, 3, now)
		text := buildBriefing(scored, emails, evOut.Events)
		return buildTextResult(svc, text, &BriefingOutput{Briefing: text})
	}); err != nil {
		return err
	}

	return nil
}

func followUpStatus(f priority.FollowUp) string {
	status := "read"
	if !f.Read {
		status = "unread"
	}
	if f.Flagged {
		status = "flagged, " + status
	}
	return status
}

// Helpers
func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildSuccessResult(service *Service, payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	if service.UseTextField() {
		b, _ := json.Marshal(payload)
		return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{{Type: "text", Text: string(b)}}}, nil
	}
	return &schema.CallToolResult{StructuredContent: map[string]any{"result": payload}}, nil
}

// buildTextResult prefers pre-formatted text in text mode and the structured
// payload otherwise.
func buildTextResult(service *Service, text string, payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	if service.UseTextField() {
		return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{{Type: "text", Text: text}}}, nil
	}
	return &schema.CallToolResult{StructuredContent: map[string]any{"result": payload}}, nil
}

func newUUID() string { return uuid.New().String() }

func buildToolErrorResult(service *Service, message string) *schema.CallToolResult {
	isErr := true
	if service.UseTextField() {
		return &schema.CallToolResult{IsError: &isErr, Content: []schema.CallToolResultContentElem{{Type: "text", Text: message}}}
	}
	return &schema.CallToolResult{IsError: &isErr, StructuredContent: map[string]any{"error": message}}
}
