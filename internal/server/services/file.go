package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sealbox/internal/common"
	sc "github.com/dmitrijs2005/sealbox/internal/server/config"
	"github.com/dmitrijs2005/sealbox/internal/server/models"
	"github.com/dmitrijs2005/sealbox/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Indirections over the AWS SDK so tests can swap them out without a live
// object store.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteS3Object = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

// FileService manages sealed file envelopes. Envelope bytes travel directly
// between the client and the object store over presigned URLs; the service
// only keeps metadata rows and hands out short-lived URLs.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

// NewFileService constructs a FileService using repositories and server config.
func NewFileService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *FileService {
	return &FileService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

// GetRandomStorageKey builds an object key that shards by upload date and
// never collides.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *FileService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	}), nil
}

func (s *FileService) getPresignClient() (*s3.PresignClient, error) {
	client, err := s.getS3Client()
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// GetPresignedPutUrl reserves a fresh storage key and returns it with a
// presigned PUT URL valid for 15 minutes.
func (s *FileService) GetPresignedPutUrl(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// GetPresignedGetUrl returns a presigned GET URL for an existing storage key,
// valid for 15 minutes.
func (s *FileService) GetPresignedGetUrl(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (s *FileService) deleteStoredObject(ctx context.Context, key string) error {
	client, err := s.getS3Client()
	if err != nil {
		return err
	}

	bucket := s.config.S3Bucket
	_, err = deleteS3Object(client, ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	return err
}

// Create registers a new file for userID and returns its metadata row along
// with a presigned upload URL. The row stays in pending state until the
// client confirms the upload via MarkUploaded.
func (s *FileService) Create(ctx context.Context, userID, name string) (*models.File, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("%w: file name must not be empty", common.ErrInvalidInput)
	}

	storageKey, url, err := s.GetPresignedPutUrl(ctx)
	if err != nil {
		return nil, "", err
	}

	file := &models.File{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		StorageKey: storageKey,
	}

	repo := s.repomanager.Files(s.db)
	created, err := repo.Create(ctx, file)
	if err != nil {
		return nil, "", fmt.Errorf("error creating file record: %w", err)
	}

	return created, url, nil
}

// List returns all of the user's files, newest first.
func (s *FileService) List(ctx context.Context, userID string) ([]models.File, error) {
	repo := s.repomanager.Files(s.db)
	list, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return list, nil
}

// MarkUploaded confirms that the client finished uploading and records the
// envelope size.
func (s *FileService) MarkUploaded(ctx context.Context, id, userID string, size int64) error {
	if size < 0 {
		return fmt.Errorf("%w: size must not be negative", common.ErrInvalidInput)
	}

	repo := s.repomanager.Files(s.db)
	if err := repo.MarkUploaded(ctx, id, userID, size); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error updating file: %w", err)
	}
	return nil
}

// GetDownloadURL returns a presigned GET URL for a file the user owns.
func (s *FileService) GetDownloadURL(ctx context.Context, id, userID string) (string, error) {
	repo := s.repomanager.Files(s.db)

	f, err := repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", err
		}
		return "", fmt.Errorf("error getting file: %w", err)
	}

	return s.GetPresignedGetUrl(ctx, f.StorageKey)
}

// Delete removes the stored object first and the metadata row second, so a
// failed object deletion leaves the row behind for a retry.
func (s *FileService) Delete(ctx context.Context, id, userID string) error {
	repo := s.repomanager.Files(s.db)

	f, err := repo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error getting file: %w", err)
	}

	if err := s.deleteStoredObject(ctx, f.StorageKey); err != nil {
		return fmt.Errorf("error deleting stored object: %w", err)
	}

	if err := repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting file record: %w", err)
	}
	return nil
}
