package services

import (
	"context"
	"errors"
	"sync"

	objectclient "github.com/markdave123-py/fileinput/internal/core/object-client"
)

type fakeObjectClient struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newFakeObjectClient() *fakeObjectClient {
	return &fakeObjectClient{objects: make(map[string][]byte)}
}

func (f *fakeObjectClient) UploadFile(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	if f.failPut {
		return "", errors.New("put failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return objectclient.ObjectURL(bucket, "us-east-2", key), nil
}

func (f *fakeObjectClient) DeleteFile(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *fakeObjectClient) GetFile(_ context.Context, bucket, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

func (f *fakeObjectClient) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
