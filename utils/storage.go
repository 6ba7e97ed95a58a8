package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/disintegration/imaging"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client.
// Prefers ADC (GOOGLE_APPLICATION_CREDENTIALS / service account); explicit
// JSON can be provided via GCS_CREDENTIALS_JSON for local development.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func gcsBucket() (string, error) {
	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return "", errors.New("GCS_BUCKET is required")
	}
	return bucketName, nil
}

func SaveBytesToGCS(ctx context.Context, objectName string, data []byte, contentType string) error {
	bucketName, err := gcsBucket()
	if err != nil {
		return err
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		return err
	}
	return wc.Close()
}

func FetchBytesFromGCS(ctx context.Context, objectName string) ([]byte, error) {
	bucketName, err := gcsBucket()
	if err != nil {
		return nil, err
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func DeleteObjectFromGCS(ctx context.Context, objectName string) error {
	bucketName, err := gcsBucket()
	if err != nil {
		return err
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.Bucket(bucketName).Object(objectName).Delete(ctx)
}

func ObjectExistsInGCS(ctx context.Context, objectName string) (bool, error) {
	bucketName, err := gcsBucket()
	if err != nil {
		return false, err
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return false, err
	}
	defer client.Close()

	_, err = client.Bucket(bucketName).Object(objectName).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func GetCloudURL(objectName string) string {
	return "https://" + os.Getenv("GCS_URL") + "/" + os.Getenv("GCS_BUCKET") + "/" + objectName
}

func ExtractObjectName(cloudUrl string) string {
	baseUrl := "https://" + os.Getenv("GCS_URL") + "/" + os.Getenv("GCS_BUCKET") + "/"
	objectName, found := strings.CutPrefix(cloudUrl, baseUrl)
	if !found {
		return ""
	}
	return objectName
}

// GCSPhotoStore keeps board photos under a fixed prefix in the bucket,
// alongside a generated thumbnail for the dashboard list view.
type GCSPhotoStore struct {
	Prefix string // e.g. "boards"
}

func (s GCSPhotoStore) Save(ctx context.Context, name string, extension string, data []byte) (string, error) {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "boards"
	}
	if extension == "" {
		extension = ".png"
	}
	filename := name + "_" + GenerateUniqueFilename() + extension
	objectName := filepath.Join(prefix, filename)

	contentType := "image/png"
	if extension == ".jpg" || extension == ".jpeg" {
		contentType = "image/jpeg"
	}
	if err := SaveBytesToGCS(ctx, objectName, data, contentType); err != nil {
		return "", err
	}

	// Thumbnail failures are not fatal: the original is already stored.
	if thumbData, err := generateThumbnail(data); err == nil {
		thumbObjectName := filepath.Join(prefix, "thumbnails", filename)
		if err := SaveBytesToGCS(ctx, thumbObjectName, thumbData, "image/jpeg"); err != nil {
			fmt.Println("Error saving thumbnail:", err)
		}
	}

	return GetCloudURL(objectName), nil
}

func (s GCSPhotoStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	objectName := ExtractObjectName(url)
	if objectName == "" {
		return nil, errors.New("invalid photo url")
	}
	return FetchBytesFromGCS(ctx, objectName)
}

func (s GCSPhotoStore) Delete(ctx context.Context, url string) error {
	objectName := ExtractObjectName(url)
	if objectName == "" {
		return errors.New("invalid photo url")
	}
	// A reference can outlive its object (manual bucket cleanup, repeated
	// prune); deleting nothing is not an error.
	exists, err := ObjectExistsInGCS(ctx, objectName)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := DeleteObjectFromGCS(ctx, objectName); err != nil {
		return err
	}
	// Remove the thumbnail too; a missing one is fine.
	dir, file := filepath.Split(objectName)
	_ = DeleteObjectFromGCS(ctx, filepath.Join(dir, "thumbnails", file))
	return nil
}

func generateThumbnail(originalData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(originalData))
	if err != nil {
		return nil, err
	}

	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var thumbnailBuffer bytes.Buffer
	if err := imaging.Encode(&thumbnailBuffer, thumbnail, imaging.JPEG); err != nil {
		return nil, err
	}

	return thumbnailBuffer.Bytes(), nil
}
