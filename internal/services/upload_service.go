package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadService stores song media. Audio uploads go up as Cloudinary "video"
// resources so they stream with range support; images as plain images.
type UploadService interface {
	UploadAudio(file io.Reader, songID string) (string, error)
	UploadImage(file io.Reader, songID string) (string, error)
}

type uploadService struct {
	cld *cloudinary.Cloudinary
}

func NewUploadService(cloudinaryURL string) (UploadService, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &uploadService{cld: cld}, nil
}

func (u *uploadService) UploadAudio(file io.Reader, songID string) (string, error) {
	return u.upload(file, uploader.UploadParams{
		ResourceType: "video",
		Folder:       "songchart/audio",
		PublicID:     fmt.Sprintf("song_%s", songID),
	})
}

func (u *uploadService) UploadImage(file io.Reader, songID string) (string, error) {
	return u.upload(file, uploader.UploadParams{
		ResourceType: "image",
		Folder:       "songchart/images",
		PublicID:     fmt.Sprintf("cover_%s", songID),
	})
}

func (u *uploadService) upload(file io.Reader, params uploader.UploadParams) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := u.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", err
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" {
		return "", fmt.Errorf("cloudinary returned no URL for %s", params.PublicID)
	}

	log.Printf("[Upload] Stored %s at %s", params.PublicID, url)
	return url, nil
}
