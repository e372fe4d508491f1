package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
)

const mailSelectFields = "id,subject,from,receivedDateTime,importance,isRead,flag,bodyPreview"

type MailService struct{ m *Manager }

func NewMailService(m *Manager) *MailService { return &MailService{m: m} }

// List fetches mailbox messages via the Graph REST API with optional OData
// filters. The default order is most recent first.
func (s *MailService) List(ctx context.Context, in *ListMailInput, scopes []string, prompt func(string)) (*ListMailOutput, error) {
	if in.Top == 0 {
		in.Top = 10
	}
	q := neturl.Values{}
	if in.Top > 0 {
		q.Set("$top", fmt.Sprintf("%d", in.Top))
	}
	q.Set("$select", mailSelectFields)
	if len(in.OrderBy) > 0 {
		q.Set("$orderby", strings.Join(in.OrderBy, ","))
	} else {
		q.Set("$orderby", "receivedDateTime DESC")
	}
	if in.Filter != "" {
		q.Set("$filter", in.Filter)
	} else if filter := receivedFilter(in.SinceISO, in.UntilISO); filter != "" {
		q.Set("$filter", filter)
	}

	body, err := s.m.doGet(ctx, in.Account, "/me/messages?"+q.Encode(), scopes, prompt)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	var payload struct {
		Value []rawMessage `json:"value"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	out := &ListMailOutput{}
	for i, raw := range payload.Value {
		if in.Top > 0 && i >= in.Top {
			break
		}
		out.Messages = append(out.Messages, raw.message())
	}
	return out, nil
}

type rawMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	ReceivedDateTime string `json:"receivedDateTime"`
	Importance       string `json:"importance"`
	IsRead           bool   `json:"isRead"`
	BodyPreview      string `json:"bodyPreview"`
	Flag             struct {
		FlagStatus  string `json:"flagStatus"`
		DueDateTime struct {
			DateTime string `json:"dateTime"`
			TimeZone string `json:"timeZone"`
		} `json:"dueDateTime"`
	} `json:"flag"`
}

func (r rawMessage) message() Message {
	return Message{
		ID:          r.ID,
		Subject:     r.Subject,
		FromName:    r.From.EmailAddress.Name,
		From:        strings.ToLower(r.From.EmailAddress.Address),
		ReceivedISO: r.ReceivedDateTime,
		Importance:  strings.ToLower(r.Importance),
		IsRead:      r.IsRead,
		FlagStatus:  strings.ToLower(r.Flag.FlagStatus),
		DueISO:      r.Flag.DueDateTime.DateTime,
		DueTimeZone: r.Flag.DueDateTime.TimeZone,
		Snippet:     r.BodyPreview,
	}
}

func receivedFilter(since, until string) string {
	var filter string
	if since != "" {
		filter = fmt.Sprintf("receivedDateTime ge %s", since)
	}
	if until != "" {
		if filter != "" {
			filter += " and "
		}
		filter += fmt.Sprintf("receivedDateTime le %s", until)
	}
	return filter
}

// Send composes and sends a new message.
func (s *MailService) Send(ctx context.Context, in *SendEmailInput, scopes []string, prompt func(string)) error {
	tos, err := formatRecipients(in.To)
	if err != nil {
		return err
	}
	msg := map[string]any{"subject": in.Subject, "toRecipients": tos}
	if in.BodyHTML != "" {
		msg["body"] = map[string]string{"contentType": "HTML", "content": in.BodyHTML}
	} else {
		msg["body"] = map[string]string{"contentType": "Text", "content": in.BodyText}
	}
	if cc, _ := formatRecipients(in.Cc); len(cc) > 0 {
		msg["ccRecipients"] = cc
	}
	if bcc, _ := formatRecipients(in.Bcc); len(bcc) > 0 {
		msg["bccRecipients"] = bcc
	}
	if in.Importance != "" {
		msg["importance"] = in.Importance
	}
	payload := map[string]any{"message": msg, "saveToSentItems": true}
	if err := s.m.doPost(ctx, in.Account, "/me/sendMail", payload, scopes, prompt); err != nil {
		return fmt.Errorf("sendMail: %w", err)
	}
	return nil
}

// Reply replies to a message by ID, optionally to all original recipients.
func (s *MailService) Reply(ctx context.Context, in *ReplyMailInput, scopes []string, prompt func(string)) error {
	if in.MessageID == "" {
		return errors.New("messageId is required")
	}
	endpoint := "reply"
	if in.ReplyAll {
		endpoint = "replyAll"
	}
	path := "/me/messages/" + neturl.PathEscape(in.MessageID) + "/" + endpoint
	if err := s.m.doPost(ctx, in.Account, path, map[string]any{"comment": in.Comment}, scopes, prompt); err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	return nil
}

// Forward forwards a message by ID to new recipients.
func (s *MailService) Forward(ctx context.Context, in *ForwardMailInput, scopes []string, prompt func(string)) error {
	if in.MessageID == "" {
		return errors.New("messageId is required")
	}
	tos, err := formatRecipients(in.To)
	if err != nil {
		return err
	}
	path := "/me/messages/" + neturl.PathEscape(in.MessageID) + "/forward"
	payload := map[string]any{"comment": in.Comment, "toRecipients": tos}
	if err := s.m.doPost(ctx, in.Account, path, payload, scopes, prompt); err != nil {
		return fmt.Errorf("forward: %w", err)
	}
	return nil
}

// formatRecipients coerces addresses into Graph recipient objects, skipping
// blank entries. At least one address must remain.
func formatRecipients(addresses []string) ([]map[string]any, error) {
	var recipients []map[string]any
	for _, address := range addresses {
		trimmed := strings.TrimSpace(address)
		if trimmed == "" {
			continue
		}
		recipients = append(recipients, map[string]any{"emailAddress": map[string]string{"address": trimmed}})
	}
	if len(recipients) == 0 {
		return nil, errors.New("at least one recipient email address is required")
	}
	return recipients, nil
}

// doGet performs an authorized GET against the Graph API and returns the body.
func (m *Manager) doGet(ctx context.Context, account Account, path string, scopes []string, prompt func(string)) ([]byte, error) {
	token, err := m.Bearer(ctx, account, scopes, prompt)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, graphBaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("graph request failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// doPost performs an authorized JSON POST against the Graph API.
func (m *Manager) doPost(ctx context.Context, account Account, path string, payload any, scopes []string, prompt func(string)) error {
	token, err := m.Bearer(ctx, account, scopes, prompt)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("graph request failed: %s", resp.Status)
	}
	return nil
}
