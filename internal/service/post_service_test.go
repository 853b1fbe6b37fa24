package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/crosspost-labs/crosspost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostPartialFailure(t *testing.T) {
	pr := &fakePosts{}
	svc := NewPostService(pr,
		&stubPublisher{name: "facebook", err: ErrNoPagesFound},
		&stubPublisher{name: "instagram", result: &transfer.PublishResult{
			PostID:    "media1",
			Permalink: "https://www.instagram.com/p/abc/",
		}},
		&stubPublisher{name: "linkedin"},
		&fakeUploader{},
	)

	summary, err := svc.CreatePost(context.Background(), 7, &transfer.PostCreation{
		Message:   "hello",
		Platforms: []string{"facebook", "instagram"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Instagram"}, summary.Published)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "Facebook error:")
	assert.False(t, summary.SavedLocally)
	require.NotZero(t, summary.PostID)

	post, err := pr.GetByID(context.Background(), summary.PostID)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "hello", post.Text)
	assert.Equal(t, "Instagram", post.Platforms)
	assert.Empty(t, post.FacebookURL)
	assert.Equal(t, "https://www.instagram.com/p/abc/", post.InstagramURL)
	assert.Empty(t, post.LinkedinURL)
}

func TestCreatePostNothingToSave(t *testing.T) {
	pr := &fakePosts{}
	svc := NewPostService(pr,
		&stubPublisher{name: "facebook"},
		&stubPublisher{name: "instagram"},
		&stubPublisher{name: "linkedin"},
		&fakeUploader{},
	)

	summary, err := svc.CreatePost(context.Background(), 7, &transfer.PostCreation{
		Message: "   ",
	}, nil)
	require.NoError(t, err)

	assert.Zero(t, summary.PostID)
	assert.Empty(t, summary.Published)

	posts, err := pr.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreatePostSavedLocally(t *testing.T) {
	pr := &fakePosts{}
	svc := NewPostService(pr,
		&stubPublisher{name: "facebook"},
		&stubPublisher{name: "instagram"},
		&stubPublisher{name: "linkedin"},
		&fakeUploader{},
	)

	summary, err := svc.CreatePost(context.Background(), 7, &transfer.PostCreation{
		Message: "draft thoughts",
	}, nil)
	require.NoError(t, err)

	assert.True(t, summary.SavedLocally)
	assert.Empty(t, summary.Published)
	assert.Empty(t, summary.Warnings)
	require.NotZero(t, summary.PostID)

	post, err := pr.GetByID(context.Background(), summary.PostID)
	require.NoError(t, err)
	assert.Empty(t, post.Platforms)
}

func TestCreatePostFixedAttemptOrder(t *testing.T) {
	var order []string
	result := &transfer.PublishResult{PostID: "x"}

	svc := NewPostService(&fakePosts{},
		&stubPublisher{name: "facebook", order: &order, result: result},
		&stubPublisher{name: "instagram", order: &order, result: result},
		&stubPublisher{name: "linkedin", order: &order, result: result},
		&fakeUploader{},
	)

	// Selection order in the request does not change the attempt order.
	summary, err := svc.CreatePost(context.Background(), 7, &transfer.PostCreation{
		Message:   "hello",
		Platforms: []string{"LinkedIn", " instagram ", "Facebook"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"facebook", "instagram", "linkedin"}, order)
	assert.Equal(t, []string{"Facebook", "Instagram", "LinkedIn"}, summary.Published)
}

func TestCreatePostAllProvidersFail(t *testing.T) {
	pr := &fakePosts{}
	svc := NewPostService(pr,
		&stubPublisher{name: "facebook", err: errors.New("fb down")},
		&stubPublisher{name: "instagram", err: ErrImageRequired},
		&stubPublisher{name: "linkedin", err: &PublishError{Provider: "linkedin", Message: "token revoked"}},
		&fakeUploader{},
	)

	summary, err := svc.CreatePost(context.Background(), 7, &transfer.PostCreation{
		Message:   "hello",
		Platforms: []string{"facebook", "instagram", "linkedin"},
	}, nil)
	require.NoError(t, err)

	assert.Empty(t, summary.Published)
	assert.Len(t, summary.Warnings, 3)
	assert.True(t, summary.SavedLocally)
	require.NotZero(t, summary.PostID)

	post, err := pr.GetByID(context.Background(), summary.PostID)
	require.NoError(t, err)
	assert.Empty(t, post.Platforms)
}

func TestCreatePostUploadsFile(t *testing.T) {
	pr := &fakePosts{}
	uploader := &fakeUploader{url: "https://media.test/pic.png"}

	var fb stubPublisher
	fb.name = "facebook"
	fb.result = &transfer.PublishResult{PostID: "p1"}

	svc := NewPostService(pr, &fb,
		&stubPublisher{name: "instagram"},
		&stubPublisher{name: "linkedin"},
		uploader,
	)

	file := multipartPNG(t)

	summary, err := svc.CreatePost(context.Background(), 7, &transfer.PostCreation{
		Message:   "with image",
		Platforms: []string{"facebook"},
	}, file)
	require.NoError(t, err)

	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, "image/png", uploader.contentType)

	post, err := pr.GetByID(context.Background(), summary.PostID)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/pic.png", post.ImageURL)
}

func TestCreatePostRejectsNonImageFile(t *testing.T) {
	uploader := &fakeUploader{url: "https://media.test/x"}
	svc := NewPostService(&fakePosts{},
		&stubPublisher{name: "facebook"},
		&stubPublisher{name: "instagram"},
		&stubPublisher{name: "linkedin"},
		uploader,
	)

	file := multipartFile(t, "notes.txt", []byte("plain text, not an image"))

	_, err := svc.CreatePost(context.Background(), 7, &transfer.PostCreation{
		Message:   "hello",
		Platforms: []string{"facebook"},
	}, file)
	require.Error(t, err)
	assert.Equal(t, 0, uploader.calls)
}

// pngHeader is the minimal magic-byte prefix filetype needs to classify PNG.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func multipartPNG(t *testing.T) *multipart.FileHeader {
	t.Helper()
	return multipartFile(t, "pic.png", pngHeader)
}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	reader := multipart.NewReader(&buf, mw.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["image"]
	require.Len(t, files, 1)
	return files[0]
}
