package storage

import (
	"context"
	"strings"
	"testing"

	"design-pro/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	cases := []struct {
		name string
		file File
		want error
	}{
		{"png", File{Name: "room.png", Size: 1024}, nil},
		{"upper jpg", File{Name: "ROOM.JPG", Size: 1024}, nil},
		{"jpeg at limit", File{Name: "plan.jpeg", Size: MaxImageSize}, nil},
		{"gif", File{Name: "anim.gif", Size: 1024}, ErrUnsupportedExtension},
		{"no extension", File{Name: "photo", Size: 1024}, ErrUnsupportedExtension},
		{"too large", File{Name: "big.png", Size: MaxImageSize + 1}, ErrTooLarge},
		{"empty", File{Name: "empty.png", Size: 0}, ErrEmptyFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateImage(tc.file)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestObjectKeyKeepsExtension(t *testing.T) {
	assert.Equal(t, "designs/abc.jpg", objectKey(FolderDesigns, "abc", "Final.JPG"))
	assert.Equal(t, "image/png", contentType("a.PNG"))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	key, err := s.Put(context.Background(), FolderPhotos, File{Name: "a.png", Size: 3, Body: strings.NewReader("abc")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, FolderPhotos+"/"))
	assert.True(t, s.Has(key))
	assert.Equal(t, "/media/"+key, s.URL(key))

	require.NoError(t, s.Delete(context.Background(), key))
	assert.False(t, s.Has(key))

	s.FailPut = true
	_, err = s.Put(context.Background(), FolderPhotos, File{Name: "a.png", Size: 3})
	assert.Error(t, err)
}

func TestNewMinioStore(t *testing.T) {
	s, err := NewMinioStore(config.Minio{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Region:    "us-east-1",
		Bucket:    "media",
		PublicURL: "http://cdn.local/media/",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.local/media/designs/x.png", s.URL("designs/x.png"))
	assert.Equal(t, "", s.URL(""))

	_, err = NewMinioStore(config.Minio{Endpoint: "http://localhost:9000", Bucket: "media"})
	assert.Error(t, err)
}
