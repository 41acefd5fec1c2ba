package tasks

import (
	"context"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/redis"
)

type TaskStatus string

const (
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

// TagTask asks for one or more word sequences to be tagged. Sentences are
// either inline or stored in S3 under TextFileKey, one sentence per line.
type TagTask struct {
	ID             string     `json:"id"`
	Sentences      [][]string `json:"sentences,omitempty"`
	TextFileKey    string     `json:"text_file_key,omitempty"`
	Status         TaskStatus `json:"status"`
	Attempts       int        `json:"attempts"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	ResultsFileKey string     `json:"results_file_key"`
	ErrorMessages  []string   `json:"error_messages"`
	Canceled       bool       `json:"canceled"`
}

// TaggedSentences is what the worker stores as task results.
type TaggedSentences struct {
	ID        string          `json:"id"`
	Sentences [][]pos.Decoded `json:"sentences"`
}

type TagTasks struct {
	client redis.Client
}

func (tasks TagTasks) Get(ctx context.Context, id string) (*TagTask, error) {
	var task TagTask
	if err := tasks.client.GetJSON(ctx, id, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks TagTasks) Save(ctx context.Context, task *TagTask) error {
	return tasks.client.SaveJSON(ctx, task.ID, task)
}

func (tasks TagTasks) Update(ctx context.Context, id string, updateFunc func(task *TagTask)) error {
	var task TagTask
	return tasks.client.Update(ctx, id, &task, func() error {
		updateFunc(&task)
		return nil
	})
}
