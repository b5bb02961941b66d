// Command nameservice serves registry requests as an AWS Lambda function.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/nameservice/contract"
	"github.com/jacentio/nameservice/internal/config"
	"github.com/jacentio/nameservice/internal/logging"
	"github.com/jacentio/nameservice/registry"
	"github.com/jacentio/nameservice/store"
	"github.com/jacentio/nameservice/store/redis"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	s, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	logger.Info("store ready", "backend", cfg.Backend)

	h := contract.NewHandler(contract.New(registry.New(s, logger)), logger)
	lambda.Start(h.Handle)
}

func openStore(ctx context.Context, cfg config.Service, logger *slog.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		s, err := redis.NewFromURL(cfg.RedisURL,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithMaxUpdateAttempts(cfg.MaxUpdateAttempts),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		logger.Warn("memory backend does not survive a cold start")
		return store.NewMemory(), nil
	default:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.AWSProfile != "" {
			opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}

		ddbCfg := store.DefaultDynamoDBConfig()
		ddbCfg.Table = cfg.TableName
		ddbCfg.MaxUpdateAttempts = cfg.MaxUpdateAttempts
		return store.NewDynamoDB(dynamodb.NewFromConfig(awsCfg), ddbCfg), nil
	}
}
