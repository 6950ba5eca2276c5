package storage

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Storage persists blobs in an S3 bucket. Credentials come from the
// default AWS chain (env, shared config, instance role).
type S3Storage struct {
	client  *s3.S3
	bucket  string
	baseURL string
}

func NewS3Storage(bucket, region string) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return &S3Storage{
		client:  s3.New(sess),
		bucket:  bucket,
		baseURL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region),
	}, nil
}

func (s *S3Storage) Store(name string, data []byte) (string, error) {
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

func (s *S3Storage) Read(url string) ([]byte, error) {
	key, err := s.key(url)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return ioutil.ReadAll(out.Body)
}

func (s *S3Storage) Delete(url string) (bool, error) {
	key, err := s.key(url)
	if err != nil {
		return false, err
	}
	_, err = s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// key rejects URLs that do not point into this bucket.
func (s *S3Storage) key(url string) (string, error) {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return "", ErrOutsideRoot
	}
	return strings.TrimPrefix(url, s.baseURL+"/"), nil
}
