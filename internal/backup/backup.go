// Package backup snapshots the journal's blob store and ships it to
// S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/journal"
)

// Snapshot is every key of a blob store at one point in time. Values are
// kept as stored, whatever codec wrote them, and appear base64 encoded in
// the JSON form.
type Snapshot struct {
	Created time.Time         `json:"created"`
	Codec   string            `json:"codec,omitempty"`
	Keys    map[string][]byte `json:"keys"`
}

// Take reads every key of blobs.
func Take(ctx context.Context, blobs journal.Blobs, now time.Time) (Snapshot, error) {
	keys, err := blobs.Keys(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list keys: %w", err)
	}

	snap := Snapshot{Created: now.UTC(), Keys: make(map[string][]byte, len(keys))}
	for _, k := range keys {
		v, err := blobs.Get(ctx, k)
		if err != nil {
			return Snapshot{}, fmt.Errorf("read %s: %w", k, err)
		}
		snap.Keys[k] = v
	}
	return snap, nil
}

// Restore writes every key of snap back to blobs. Keys absent from the
// snapshot are left untouched.
func Restore(ctx context.Context, blobs journal.Blobs, snap Snapshot) error {
	for k, v := range snap.Keys {
		if err := blobs.Put(ctx, k, v); err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
	}
	return nil
}

func Write(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func Read(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Keys == nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: no keys")
	}
	return snap, nil
}

// ObjectKey names the object a snapshot taken at t is uploaded to.
func ObjectKey(prefix string, t time.Time) string {
	name := "tradejournal-" + t.UTC().Format("20060102-150405") + ".json"
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Uploader is the part of the S3 client the service needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Service uploads snapshots. It is a scheduler job.
type Service struct {
	blobs    journal.Blobs
	codec    string
	uploader Uploader
	bucket   string
	prefix   string
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(blobs journal.Blobs, codec string, uploader Uploader, bucket, prefix string, log zerolog.Logger) *Service {
	return &Service{
		blobs:    blobs,
		codec:    codec,
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		log:      log.With().Str("component", "backup").Logger(),
		now:      time.Now,
	}
}

func (s *Service) Name() string { return "backup" }

// Run uploads one snapshot.
func (s *Service) Run(ctx context.Context) error {
	_, err := s.Upload(ctx)
	return err
}

// Upload takes a snapshot, uploads it and returns the object key.
func (s *Service) Upload(ctx context.Context) (string, error) {
	now := s.now()
	snap, err := Take(ctx, s.blobs, now)
	if err != nil {
		return "", err
	}
	snap.Codec = s.codec

	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := ObjectKey(s.prefix, now)
	_, err = s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		s.log.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("Backup upload failed")
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	s.log.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("keys", len(snap.Keys)).
		Int("bytes", buf.Len()).
		Msg("Backup uploaded")
	return key, nil
}
