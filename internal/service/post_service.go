package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/crosspost-labs/crosspost/internal/models"
	"github.com/crosspost-labs/crosspost/internal/repository"
	"github.com/crosspost-labs/crosspost/internal/transfer"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// Publisher is the capability every provider adapter exposes to the
// orchestrator.
type Publisher interface {
	Publish(ctx context.Context, userID int64, message, imageURL string) (*transfer.PublishResult, error)
}

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, file *multipart.FileHeader) (*transfer.PublishSummary, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr    repository.PostRepository
	fb    Publisher
	ig    Publisher
	li    Publisher
	media MediaUploader
}

func NewPostService(pr repository.PostRepository, fb, ig, li Publisher, media MediaUploader) PostService {
	return &postService{
		pr:    pr,
		fb:    fb,
		ig:    ig,
		li:    li,
		media: media,
	}
}

// displayName maps provider names to what the Post record stores in its
// platforms list.
var displayName = map[string]string{
	"facebook":  "Facebook",
	"instagram": "Instagram",
	"linkedin":  "LinkedIn",
}

// CreatePost publishes one submission to every selected provider and writes
// a single immutable Post snapshot afterwards. Providers are attempted in a
// fixed order and isolated from each other: one failure becomes a warning
// and never stops the remaining attempts or the Post write.
func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, file *multipart.FileHeader) (*transfer.PublishSummary, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}

	message := strings.TrimSpace(pc.Message)
	imageURL := strings.TrimSpace(pc.ImageURL)

	if file != nil {
		uploadedURL, err := s.uploadImage(ctx, file)
		if err != nil {
			return nil, err
		}
		imageURL = uploadedURL
	}

	selected := make(map[string]bool, len(pc.Platforms))
	for _, p := range pc.Platforms {
		selected[strings.ToLower(strings.TrimSpace(p))] = true
	}

	attempts := []struct {
		name string
		pub  Publisher
	}{
		{"facebook", s.fb},
		{"instagram", s.ig},
		{"linkedin", s.li},
	}

	summary := &transfer.PublishSummary{Published: []string{}}
	permalinks := make(map[string]string, len(attempts))

	for _, a := range attempts {
		if !selected[a.name] {
			continue
		}

		result, err := a.pub.Publish(ctx, userID, message, imageURL)
		if err != nil {
			slog.Info("publish failed", "platform", a.name, "user_id", userID, "error", err)
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s error: %v", displayName[a.name], err))
			continue
		}

		permalinks[a.name] = result.Permalink
		summary.Published = append(summary.Published, displayName[a.name])
	}

	// Nothing to keep: no text, no image, so no Post row either.
	if message == "" && imageURL == "" {
		return summary, nil
	}

	post := &models.Post{
		UserID:       userID,
		Text:         message,
		ImageURL:     imageURL,
		Platforms:    strings.Join(summary.Published, ","),
		FacebookURL:  permalinks["facebook"],
		InstagramURL: permalinks["instagram"],
		LinkedinURL:  permalinks["linkedin"],
	}

	postID, err := s.pr.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	summary.PostID = postID
	summary.SavedLocally = len(summary.Published) == 0

	return summary, nil
}

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {},
}

// uploadImage pushes an uploaded file to the media store and returns its
// durable public URL.
func (s *postService) uploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	fileContent, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return "", fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return "", fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedImageTypes[fileType.Extension]; !ok {
		return "", fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	fileURL, err := s.media.Upload(ctx, fileBytes, fileType.MIME.Value)
	if err != nil {
		return "", fmt.Errorf("error uploading file: %w", err)
	}

	return fileURL, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting posts")
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("Error getting post info")
	}

	return post, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return err
	}

	if postID == 0 {
		err = errors.New("post_id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	err = s.pr.Remove(ctx, postID)
	if err != nil {
		return fmt.Errorf("Error removing post")
	}

	return nil
}
