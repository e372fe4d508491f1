package graph

import (
	"context"
	"fmt"

	models "github.com/microsoftgraph/msgraph-sdk-go/models"
)

type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
	DueISO string `json:"dueISO,omitempty"`
}

type CreateTaskInput struct {
	Account  Account `json:"account"`
	Title    string  `json:"title"`
	BodyText string  `json:"bodyText,omitempty"`
	DueISO   string  `json:"dueISO,omitempty"`
	TimeZone string  `json:"timeZone,omitempty"`
}

type TaskService struct{ m *Manager }

func NewTaskService(m *Manager) *TaskService { return &TaskService{m: m} }

// Create adds a task to the default To Do list. Used by follow-up workflows
// to turn a ranked email into a tracked action.
func (s *TaskService) Create(ctx context.Context, in *CreateTaskInput, scopes []string, prompt func(string)) (*Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	client, err := s.m.Client(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	lists, err := client.Me().Todo().Lists().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list task lists: %w", err)
	}
	var listID string
	if values := lists.GetValue(); len(values) > 0 {
		listID = ptrVal(values[0].GetId())
	}
	if listID == "" {
		return nil, fmt.Errorf("no task list available for account %q", in.Account.Alias)
	}
	task := models.NewTodoTask()
	task.SetTitle(ptr(in.Title))
	if in.BodyText != "" {
		body := models.NewItemBody()
		body.SetContentType(ptr(models.TEXT_BODYTYPE))
		body.SetContent(ptr(in.BodyText))
		task.SetBody(body)
	}
	if in.DueISO != "" {
		tz := in.TimeZone
		if tz == "" {
			tz = "UTC"
		}
		due := models.NewDateTimeTimeZone()
		due.SetDateTime(ptr(in.DueISO))
		due.SetTimeZone(ptr(tz))
		task.SetDueDateTime(due)
	}
	created, err := client.Me().Todo().Lists().ByTodoTaskListId(listID).Tasks().Post(ctx, task, nil)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &Task{ID: ptrVal(created.GetId()), Title: ptrVal(created.GetTitle()), DueISO: in.DueISO}, nil
}
