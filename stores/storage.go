package stores

import (
	"context"
	"fmt"
	"mindmap-share/config"
	"mindmap-share/core"
	"mindmap-share/stores/aws"
	"mindmap-share/stores/dynamo"
	"mindmap-share/stores/filesystem"
	"mindmap-share/stores/memory"
	"mindmap-share/stores/postgres"
	"mindmap-share/stores/redis"
	"mindmap-share/stores/sqlite"
	"mindmap-share/token"

	"github.com/sirupsen/logrus"
)

// NewRecordStore builds the backend named by cfg.Type. Nothing is created
// or migrated until Init runs.
func NewRecordStore(ctx context.Context, cfg config.StorageConfig, log logrus.FieldLogger) (core.RecordStore, error) {
	var store core.RecordStore

	storageField := logrus.Fields{
		"storageType": cfg.Type,
	}

	switch cfg.Type {
	case "filesystem":
		storageField["basePath"] = cfg.Filesystem.Path
		store = filesystem.NewRecordStore(cfg.Filesystem.Path, log)
	case "sqlite", "":
		storageField["dataSourceName"] = cfg.SQLite.DSN
		store = sqlite.NewRecordStore(cfg.SQLite.DSN)
	case "s3":
		storageField["bucketName"] = cfg.S3.Bucket
		client, err := aws.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		store = aws.NewRecordStore(client, cfg.S3.Bucket, cfg.S3.Prefix)
	case "dynamodb":
		storageField["tableName"] = cfg.DynamoDB.Table
		client, err := dynamo.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		store = dynamo.NewRecordStore(client, cfg.DynamoDB.Table)
	case "redis":
		storageField["redisAddr"] = cfg.Redis.Addr
		client := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		store = redis.NewRecordStore(client, cfg.Redis.Prefix)
	case "postgres":
		store = postgres.NewRecordStore(cfg.Postgres.DSN)
	case "memory":
		store = memory.NewRecordStore()
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}

	log.WithFields(storageField).Info("Use storage")
	return store, nil
}

// GetStore assembles the DocumentStore for cfg. The caller must run Init
// before serving requests.
func GetStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (core.DocumentStore, error) {
	records, err := NewRecordStore(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	tokens, err := token.New(cfg.Token.Format)
	if err != nil {
		return nil, err
	}
	return NewDocumentStore(records, tokens, log), nil
}
