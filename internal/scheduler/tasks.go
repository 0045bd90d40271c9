package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskImportFile = "imports.file"

type ImportFilePayload struct {
	JobID string `json:"jobId"`
}

func NewImportFileTask(payload ImportFilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskImportFile, data), nil
}

func ParseImportFilePayload(task *asynq.Task) (ImportFilePayload, error) {
	var payload ImportFilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ImportFilePayload{}, err
	}
	return payload, nil
}
