package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"text2phenotype.com/hmmtag/pipeline"
	"text2phenotype.com/hmmtag/tasks"
	"text2phenotype.com/hmmtag/utils"
)

var ErrNoTaskWords = errors.New("tag task has no sentences")

type Message struct {
	TaskID string           `json:"task_id"`
	Sender string           `json:"sender,omitempty"`
	Status tasks.TaskStatus `json:"status,omitempty"`
}

type Task struct {
	delivery  *amqp.Delivery
	tagTask   *tasks.TagTask
	message   *Message
	id        string
	hmmLogger *zerolog.Logger
}

func (worker *Worker) processMessage(ctx context.Context, delivery *amqp.Delivery) {
	rejectLogger := worker.hmmLogger.With().Str("message_id", delivery.MessageId).Logger()
	task, err := worker.createTask(ctx, delivery)
	if err != nil {
		worker.hmmLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("body", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	status, err := worker.processTask(ctx, task)
	if err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	reply := *task.message
	reply.Status = status
	if err = worker.rmq.sendReply(task, reply); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while sending reply")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.hmmLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.hmmLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(ctx context.Context, delivery *amqp.Delivery) (*Task, error) {
	var message Message
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	tagTask, err := worker.redis.getTagTask(ctx, message.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag task for message, got error %w", err)
	}
	taskLogger := worker.hmmLogger.With().Str("tid", message.TaskID).Logger()
	return &Task{
		delivery:  delivery,
		tagTask:   tagTask,
		id:        message.TaskID,
		message:   &message,
		hmmLogger: &taskLogger,
	}, nil
}

// processTask returns the status to report back. A failing pipeline is
// recorded on the task and is not an error of the delivery.
func (worker *Worker) processTask(ctx context.Context, task *Task) (tasks.TaskStatus, error) {
	status, shouldPerform, err := worker.shouldPerformTask(ctx, task)
	if err != nil {
		task.hmmLogger.Err(err).Msg("Got error while trying to decide whether to run task")
		return status, err
	}
	if !shouldPerform {
		return status, nil
	}
	if err = worker.redis.onTaskStarted(ctx, task); err != nil {
		task.hmmLogger.Err(err).Msg("Failed to update task info")
		return status, fmt.Errorf("failed to update tag task: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while running pipeline")
		if err = worker.redis.onTaskFailedWithError(ctx, task, err); err != nil {
			return tasks.TaskStatusFailed, err
		}
		return tasks.TaskStatusFailed, nil
	}
	task.hmmLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(ctx, task); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return status, err
	}
	return tasks.TaskStatusCompletedSuccess, nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.hmmLogger.Info().Msgf("Processing tag task, attempt # %d", task.tagTask.Attempts+1)

	sentences := task.tagTask.Sentences
	if len(sentences) == 0 && task.tagTask.TextFileKey != "" {
		data, err := worker.s3.getTaskText(task)
		if err != nil {
			task.hmmLogger.Err(err).Caller().Msg("Could not fetch text data from s3")
			return fmt.Errorf("failed fetch data from s3: %w", err)
		}
		sentences = pipeline.SentencesFromText(string(data))
	}
	if len(sentences) == 0 {
		return ErrNoTaskWords
	}

	resp, ok := <-worker.ppln(pipeline.Request{Tid: task.id, Sentences: sentences})
	if !ok {
		task.hmmLogger.Error().Msg("Pipeline channel was closed before returning anything")
		return errors.New("pipeline channel was closed before returning anything")
	}
	result, err := json.Marshal(tasks.TaggedSentences{ID: task.id, Sentences: resp.Sentences})
	if err != nil {
		return err
	}
	task.hmmLogger.Info().Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResultsFile(task, string(result)); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(ctx context.Context, task *Task) (tasks.TaskStatus, bool, error) {
	tagTask := task.tagTask
	taskLogger := task.hmmLogger

	if tagTask.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Replying with its status.")
		return tagTask.Status, false, nil
	}
	if tagTask.Canceled {
		taskLogger.Info().Msg("Task was canceled, no need to perform it.")
		return tasks.TaskStatusCanceled, false, worker.redis.onTaskCancelled(ctx, task)
	}
	if tagTask.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Tag task has exceeded retries.")
		return tasks.TaskStatusCompletedFailure, false, worker.redis.onTaskExceededRetries(ctx, task, worker.config.TaskMaxRetries)
	}
	return tagTask.Status, true, nil
}
