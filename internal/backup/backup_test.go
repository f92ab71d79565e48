package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
)

type fakeUploader struct {
	bucket string
	key    string
	body   []byte
	err    error
}

func (f *fakeUploader) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func seededBlobs(t *testing.T) *journal.MemoryBlobs {
	t.Helper()
	ctx := context.Background()
	store := journal.NewStore(journal.NewMemoryBlobs(), journal.JSONCodec{}, zerolog.New(io.Discard))
	_, err := store.Accounts(ctx)
	require.NoError(t, err)
	_, err = store.SaveTrade(ctx, journal.Trade{AccountID: "default", Date: "2024-05-06", Symbol: "xauusd", Result: journal.ResultWin, PnL: 80})
	require.NoError(t, err)
	require.NoError(t, store.SetOnboarded(ctx, true))
	return store.Blobs().(*journal.MemoryBlobs)
}

func TestTakeAndRestore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := seededBlobs(t)
	now := time.Date(2024, 5, 7, 18, 30, 0, 0, time.UTC)

	snap, err := Take(ctx, src, now)
	require.NoError(t, err)
	assert.Equal(t, now, snap.Created)
	assert.Len(t, snap.Keys, 3)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	back, err := Read(&buf)
	require.NoError(t, err)

	dst := journal.NewMemoryBlobs()
	require.NoError(t, Restore(ctx, dst, back))

	restored := journal.NewStore(dst, journal.JSONCodec{}, zerolog.New(io.Discard))
	trades, err := restored.Trades(ctx, "default")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "XAUUSD", trades[0].Symbol)

	onboarded, err := restored.Onboarded(ctx)
	require.NoError(t, err)
	assert.True(t, onboarded)
}

func TestReadRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := Read(bytes.NewBufferString(`{"created":"2024-05-07T00:00:00Z"}`))
	assert.Error(t, err)

	_, err = Read(bytes.NewBufferString(`not json`))
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "nightly/tradejournal-20240102-030405.json", ObjectKey("nightly", at))
	assert.Equal(t, "tradejournal-20240102-030405.json", ObjectKey("", at))
}

func TestServiceUpload(t *testing.T) {
	t.Parallel()

	up := &fakeUploader{}
	svc := NewService(seededBlobs(t), "json", up, "journal-backups", "tj", zerolog.New(io.Discard))
	svc.now = func() time.Time { return time.Date(2024, 5, 7, 18, 30, 0, 0, time.UTC) }

	key, err := svc.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tj/tradejournal-20240507-183000.json", key)
	assert.Equal(t, "journal-backups", up.bucket)
	assert.Equal(t, key, up.key)

	snap, err := Read(bytes.NewReader(up.body))
	require.NoError(t, err)
	assert.Equal(t, "json", snap.Codec)
	assert.Contains(t, snap.Keys, journal.KeyTrades)
	assert.Equal(t, "backup", svc.Name())
}

func TestServiceUploadError(t *testing.T) {
	t.Parallel()

	up := &fakeUploader{err: errors.New("access denied")}
	svc := NewService(seededBlobs(t), "json", up, "journal-backups", "", zerolog.New(io.Discard))

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
