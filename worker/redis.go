package worker

import (
	"context"
	"fmt"
	"text2phenotype.com/hmmtag/tasks"
)

type redisTransactions interface {
	getTagTask(ctx context.Context, id string) (*tasks.TagTask, error)
	onTaskStarted(ctx context.Context, task *Task) error
	onTaskCancelled(ctx context.Context, task *Task) error
	onTaskExceededRetries(ctx context.Context, task *Task, maxRetries int) error
	onTaskFailedWithError(ctx context.Context, task *Task, err error) error
	onTaskComplete(ctx context.Context, task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) getTagTask(ctx context.Context, id string) (*tasks.TagTask, error) {
	return wrapper.tasksClient.Tags.Get(ctx, id)
}

func (wrapper *redisClientWrapper) onTaskStarted(ctx context.Context, task *Task) error {
	return wrapper.tasksClient.Tags.Update(ctx, task.id, func(tagTask *tasks.TagTask) {
		tagTask.Status = tasks.TaskStatusStarted
		tagTask.Attempts += 1
		tagTask.StartedAt = getFormattedNow()
		tagTask.CompletedAt = nil
	})
}

func (wrapper *redisClientWrapper) onTaskCancelled(ctx context.Context, task *Task) error {
	return wrapper.tasksClient.Tags.Update(ctx, task.id, func(tagTask *tasks.TagTask) {
		tagTask.Status = tasks.TaskStatusCanceled
		tagTask.CompletedAt = getFormattedNow()
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(ctx context.Context, task *Task, maxRetries int) error {
	return wrapper.tasksClient.Tags.Update(ctx, task.id, func(tagTask *tasks.TagTask) {
		tagTask.Status = tasks.TaskStatusCompletedFailure
		tagTask.CompletedAt = getFormattedNow()
		tagTask.ErrorMessages = append(
			tagTask.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d)",
				tagTask.Attempts,
				maxRetries,
			),
		)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(ctx context.Context, task *Task, err error) error {
	return wrapper.tasksClient.Tags.Update(ctx, task.id, func(tagTask *tasks.TagTask) {
		tagTask.Status = tasks.TaskStatusFailed
		tagTask.CompletedAt = getFormattedNow()
		tagTask.ErrorMessages = append(tagTask.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(ctx context.Context, task *Task) error {
	return wrapper.tasksClient.Tags.Update(ctx, task.id, func(tagTask *tasks.TagTask) {
		if !tagTask.Status.Complete() {
			tagTask.Status = tasks.TaskStatusCompletedSuccess
		}
		tagTask.CompletedAt = getFormattedNow()
		tagTask.ResultsFileKey = getResultsFileKey(task)
	})
}
