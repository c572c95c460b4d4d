package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"https://minio.example.com:9000/strings/snapshots/2025-10-20/x.json",
		ObjectURL("https", "minio.example.com:9000", "strings", "snapshots/2025-10-20/x.json"))
	assert.Equal(t,
		"http://localhost:9000/b/k",
		ObjectURL("", "localhost:9000", "b", "k"))
}

func TestNewRejectsEndpointWithScheme(t *testing.T) {
	// minio-go wants host:port, not a URL; this fails before any network call
	_, err := New(context.Background(), "http://localhost:9000", "", "snapshots", "key", "secret", false)
	assert.Error(t, err)
}
