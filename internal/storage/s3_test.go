package storage

import (
	"context"
	"testing"

	"nrw-report-service/internal/config"
)

func TestS3WithoutEndpointTargetsAWS(t *testing.T) {
	objects, err := NewS3Storage(context.Background(), config.StorageConfig{
		Driver:    "s3",
		Region:    "eu-west-1",
		Bucket:    "leak-images",
		AccessKey: "key",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("new s3 storage: %v", err)
	}
	if got := objects.PublicURL("1700000000000-abc.png"); got != "https://s3.eu-west-1.amazonaws.com/leak-images/1700000000000-abc.png" {
		t.Fatalf("unexpected public url %q", got)
	}
}
