package geometry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/da0bi/psysmon/core/storage"
	"github.com/da0bi/psysmon/feature/geometry/inventory"

	"github.com/minio/minio-go/v7"
)

// WriteSnapshot serializes an inventory and uploads it to the snapshot
// bucket under snapshots/<slug>/<timestamp>-<opID>.json. The bucket is
// created if it does not exist. It returns the object name.
func WriteSnapshot(ctx context.Context, client storage.Client, bucket, slug, opID string, inv *inventory.Inventory) (string, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check snapshot bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create snapshot bucket: %w", err)
		}
	}

	data, err := json.MarshalIndent(inv.Document(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize inventory snapshot: %w", err)
	}

	objectName := fmt.Sprintf("snapshots/%s/%s-%s.json",
		slug, time.Now().UTC().Format("20060102T150405Z"), opID)

	_, err = client.PutObject(ctx, bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot %s: %w", objectName, err)
	}

	return objectName, nil
}

// ReadSnapshot downloads a snapshot object and decodes it back into a
// transient inventory, applying the same validation as the description
// reader.
func ReadSnapshot(ctx context.Context, client storage.Client, bucket, objectName string) (*inventory.Inventory, []inventory.Warning, error) {
	reader, err := client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get snapshot %s: %w", objectName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot %s: %w", objectName, err)
	}

	var doc inventory.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode snapshot %s: %w", objectName, err)
	}

	inv, warnings, err := inventory.FromDocument(doc)
	if err != nil {
		return nil, warnings, fmt.Errorf("snapshot %s is not a valid inventory: %w", objectName, err)
	}
	return inv, warnings, nil
}
