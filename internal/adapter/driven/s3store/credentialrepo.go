// Package s3store implements the CredentialStore port on Amazon S3. Each
// service is one JSON object under a fixed key prefix.
package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "passwords"

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// object is the persisted JSON body of a credential.
type object struct {
	Username          string `json:"username"`
	EncryptedPassword string `json:"encrypted_password"`
}

// CredentialRepo stores credentials as s3://bucket/prefix/<service>.json.
type CredentialRepo struct {
	client s3iface.S3API
	bucket string
	prefix string
}

// NewCredentialRepo creates a CredentialRepo. An empty prefix selects DefaultPrefix.
func NewCredentialRepo(client s3iface.S3API, bucket, prefix string) *CredentialRepo {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &CredentialRepo{client: client, bucket: bucket, prefix: prefix}
}

// Put writes the credential object, replacing any existing one.
func (r *CredentialRepo) Put(ctx context.Context, cred model.Credential) error {
	body, err := json.Marshal(object{Username: cred.Username, EncryptedPassword: cred.EncryptedPassword})
	if err != nil {
		return fmt.Errorf("marshal credential %q: %w", cred.Service, err)
	}

	key := r.objectKey(cred.Service)
	_, err = r.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w: %w", r.bucket, key, driven.ErrStoreUnavailable, err)
	}
	return nil
}

// Get reads the credential object for service. Returns (nil, nil) when the
// object does not exist.
func (r *CredentialRepo) Get(ctx context.Context, service string) (*model.Credential, error) {
	key := r.objectKey(service)
	out, err := r.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w: %w", r.bucket, key, driven.ErrStoreUnavailable, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w: %w", r.bucket, key, driven.ErrStoreUnavailable, err)
	}

	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode s3://%s/%s: %w", r.bucket, key, err)
	}

	cred := &model.Credential{
		Service:           service,
		Username:          obj.Username,
		EncryptedPassword: obj.EncryptedPassword,
	}
	if out.LastModified != nil {
		cred.UpdatedAt = out.LastModified.UTC()
	}
	return cred, nil
}

// List returns the service names of every object under the prefix.
func (r *CredentialRepo) List(ctx context.Context) ([]string, error) {
	services := []string{}
	var decodeErr error

	err := r.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix + "/"),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			service, ok, err := r.serviceFromKey(aws.StringValue(obj.Key))
			if err != nil {
				decodeErr = err
				return false
			}
			if ok {
				services = append(services, service)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %w: %w", r.bucket, r.prefix, driven.ErrStoreUnavailable, err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return services, nil
}

// objectKey escapes service so names containing "/" stay a single object.
func (r *CredentialRepo) objectKey(service string) string {
	return r.prefix + "/" + url.PathEscape(service) + ".json"
}

func (r *CredentialRepo) serviceFromKey(key string) (string, bool, error) {
	name, ok := strings.CutPrefix(key, r.prefix+"/")
	if !ok {
		return "", false, nil
	}
	name, ok = strings.CutSuffix(name, ".json")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false, nil
	}
	service, err := url.PathUnescape(name)
	if err != nil {
		return "", false, fmt.Errorf("decode object key %q: %w", key, err)
	}
	return service, true, nil
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	// Code NotFound is not documented, but it's what the API returns for HEAD.
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
