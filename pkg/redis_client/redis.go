package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/travigo/mvg-departures/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

// Options builds the redis connection options from the MVG_REDIS_* environment variables
func Options() (*redis.Options, error) {
	options := &redis.Options{
		Addr:     defaultConnectionAddress,
		Password: defaultConnectionPassword,
		DB:       defaultDatabase,
	}

	env := util.GetEnvironmentVariables()

	if env["MVG_REDIS_ADDRESS"] != "" {
		options.Addr = env["MVG_REDIS_ADDRESS"]
	}

	if env["MVG_REDIS_PASSWORD"] != "" {
		options.Password = env["MVG_REDIS_PASSWORD"]
	}

	if env["MVG_REDIS_DATABASE"] != "" {
		n, err := strconv.Atoi(env["MVG_REDIS_DATABASE"])
		if err != nil {
			return nil, err
		}
		options.DB = n
	}

	return options, nil
}

func Connect() error {
	options, err := Options()
	if err != nil {
		return err
	}

	Client = redis.NewClient(options)

	return Client.Ping(context.Background()).Err()
}
