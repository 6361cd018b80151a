// Package tasks exposes google tasks actions as tools
package tasks

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/tasks/v1"

	"github.com/bububa/atomic-assistant/auth"
	"github.com/bububa/atomic-assistant/schema"
	"github.com/bububa/atomic-assistant/tools"
	"github.com/bububa/atomic-assistant/tools/google"
)

const ServiceName = "tasks"

const (
	CreateTaskName = "create_task"
	ListTasksName  = "list_tasks"
)

const DefaultTaskList = "@default"

// CreateTaskInput creates a task
type CreateTaskInput struct {
	schema.Base
	Title    string `json:"title" jsonschema:"title=title,description=Title of the task." validate:"required"`
	Notes    string `json:"notes,omitempty" jsonschema:"title=notes,description=Notes of the task."`
	Due      string `json:"due,omitempty" jsonschema:"title=due" jsonschema_description:"Due date as an RFC 3339 timestamp or a YYYY-MM-DD date."`
	TaskList string `json:"tasklist,omitempty" jsonschema:"title=tasklist,default=@default,description=Task list id."`
}

func (i *CreateTaskInput) SetDefaults() {
	if i.TaskList == "" {
		i.TaskList = DefaultTaskList
	}
}

// ListTasksInput lists the tasks of a task list
type ListTasksInput struct {
	schema.Base
	TaskList string `json:"tasklist,omitempty" jsonschema:"title=tasklist,default=@default,description=Task list id."`
}

func (i *ListTasksInput) SetDefaults() {
	if i.TaskList == "" {
		i.TaskList = DefaultTaskList
	}
}

// Task is the model facing view of a task
type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Tasks []Task

func (t Tasks) String() string {
	return schema.JSON(t)
}

type Config struct {
	serviceOpts []google.Option
}

// TaskList runs tasks actions with a credential borrowed per call
type TaskList struct {
	Config
	service *google.Service
}

func New(clients google.ClientProvider, opts ...Option) *TaskList {
	ret := new(TaskList)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	ret.service = google.NewService(ServiceName, auth.TasksKey, clients, ret.serviceOpts...)
	return ret
}

// Tools returns every tasks tool
func (t *TaskList) Tools(opts ...tools.Option) []tools.Tool {
	return []tools.Tool{
		tools.NewFunc(CreateTaskName, "Create a new task in Google Tasks.", t.CreateTask, opts...),
		tools.NewFunc(ListTasksName, "List all tasks in a task list.", t.ListTasks, opts...),
	}
}

func (t *TaskList) client(ctx context.Context) (*tasks.Service, error) {
	opts, err := t.service.ClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, t.service.Error("connect", err)
	}
	return svc, nil
}

// normalizeDue converts a due date to the RFC 3339 timestamp the API expects
func normalizeDue(due string) (string, error) {
	if due == "" {
		return "", nil
	}
	if ts, err := time.Parse(time.RFC3339, due); err == nil {
		return ts.UTC().Format(time.RFC3339), nil
	}
	if d, err := time.Parse(time.DateOnly, due); err == nil {
		return d.Format(time.RFC3339), nil
	}
	return "", fmt.Errorf("invalid due %q, expect RFC 3339 timestamp or YYYY-MM-DD", due)
}

func (t *TaskList) CreateTask(ctx context.Context, in *CreateTaskInput) (*schema.String, error) {
	due, err := normalizeDue(in.Due)
	if err != nil {
		return nil, err
	}
	taskList := in.TaskList
	if taskList == "" {
		taskList = DefaultTaskList
	}
	svc, err := t.client(ctx)
	if err != nil {
		return nil, err
	}
	created, err := svc.Tasks.Insert(taskList, &tasks.Task{
		Title: in.Title,
		Notes: in.Notes,
		Due:   due,
	}).Context(ctx).Do()
	if err != nil {
		return nil, t.service.Error("tasks.insert", err)
	}
	ret := schema.String("Task created: " + created.Title)
	return &ret, nil
}

func (t *TaskList) ListTasks(ctx context.Context, in *ListTasksInput) (*Tasks, error) {
	taskList := in.TaskList
	if taskList == "" {
		taskList = DefaultTaskList
	}
	svc, err := t.client(ctx)
	if err != nil {
		return nil, err
	}
	ret := Tasks{}
	err = svc.Tasks.List(taskList).Pages(ctx, func(page *tasks.Tasks) error {
		for _, item := range page.Items {
			ret = append(ret, Task{
				ID:    item.Id,
				Title: item.Title,
			})
		}
		return nil
	})
	if err != nil {
		return nil, t.service.Error("tasks.list", err)
	}
	return &ret, nil
}
