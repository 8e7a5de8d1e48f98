package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/spacesedan/reviewflow/internal/clients"
)

var dataTypes = []string{"raw_data", "processed_data"}

// BackupDataDir mirrors every target's data tree to the bucket and returns
// the number of objects uploaded. One object failing is logged and skipped;
// it never stops the rest of the transfer.
func BackupDataDir(ctx context.Context, bucket, dataDir string) (int, error) {
	if bucket == "" {
		return 0, fmt.Errorf("no S3 bucket configured")
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return 0, fmt.Errorf("read data dir %s: %w", dataDir, err)
	}

	uploader := manager.NewUploader(clients.GetS3Client())

	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		uploaded := backupTarget(ctx, uploader, bucket, dataDir, entry.Name())
		total += uploaded
	}

	slog.Info("[S3Backup] Backup process completed", slog.Int("total_files", total))
	return total, nil
}

func backupTarget(ctx context.Context, uploader *manager.Uploader, bucket, dataDir, target string) int {
	slog.Info("[S3Backup] Starting backup for target", slog.String("target", target))

	uploaded := 0
	for _, dataType := range dataTypes {
		dir := filepath.Join(dataDir, target, dataType)
		if _, err := os.Stat(dir); err != nil {
			slog.Warn("[S3Backup] Data directory does not exist", slog.String("dir", dir))
			continue
		}
		uploaded += uploadDirectory(ctx, uploader, bucket, dir, target, dataType)
	}

	slog.Info("[S3Backup] Completed backup for target",
		slog.String("target", target), slog.Int("files_uploaded", uploaded))
	return uploaded
}

func uploadDirectory(ctx context.Context, uploader *manager.Uploader, bucket, dir, target, dataType string) int {
	uploaded := 0

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		key := strings.Join([]string{target, dataType, filepath.ToSlash(rel)}, "/")

		if err := uploadFile(ctx, uploader, bucket, path, key); err != nil {
			slog.Error("[S3Backup] Error uploading file",
				slog.String("path", path),
				slog.String("key", key),
				slog.String("error", err.Error()))
			return nil
		}
		uploaded++
		return nil
	})

	return uploaded
}

func uploadFile(ctx context.Context, uploader *manager.Uploader, bucket, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	slog.Info("[S3Backup] Uploading file",
		slog.String("path", path),
		slog.String("destination", fmt.Sprintf("s3://%s/%s", bucket, key)))

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	return err
}
