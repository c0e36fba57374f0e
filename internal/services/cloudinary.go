package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CloudinaryUploader stores attachments in Cloudinary under a generated uuid public id.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	if folder == "" {
		folder = "watchfeed"
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (s *CloudinaryUploader) Upload(ctx context.Context, name string, data []byte) (UploadedFile, error) {
	id := uuid.NewString()
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     id,
		ResourceType: "auto", // image, video or raw
	})
	if err != nil {
		return UploadedFile{}, errors.Wrapf(ErrUpstream, "upload %s to Cloudinary: %v", name, err)
	}
	if res.Error.Message != "" {
		return UploadedFile{}, errors.Wrapf(ErrUpstream, "upload %s to Cloudinary: %s", name, res.Error.Message)
	}
	return UploadedFile{UUID: id, URL: res.SecureURL}, nil
}
