package tasks

import (
	"fmt"
	"text2phenotype.com/hmmtag/redis"
)

const (
	TagTasksDB redis.DB = 0
	ModelsDB   redis.DB = 1
)

type Client struct {
	Tags   TagTasks
	Models ModelStore
}

// NewClient opens one redis connection per database.
func NewClient() (Client, error) {
	tagsClient, err := redis.NewClient(TagTasksDB)
	if err != nil {
		return Client{}, err
	}
	modelsClient, err := redis.NewClient(ModelsDB)
	if err != nil {
		_ = tagsClient.Close()
		return Client{}, err
	}
	return Client{
		Tags:   TagTasks{client: tagsClient},
		Models: ModelStore{client: modelsClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Tags.client.Close()
	_ = client.Models.client.Close()
}

func modelKey(fingerprint string) string {
	return fmt.Sprintf("hmm-model:%s", fingerprint)
}
