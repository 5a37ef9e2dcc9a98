package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	meetingID := uuid.New()
	key, err := ls.Save(ctx, meetingID, "minutes.pdf", strings.NewReader("minutes content"), "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, meetingID.String()+"/"))

	reader, err := ls.Open(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "minutes content", string(content))

	url, err := ls.SignedURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "/files/"+key, url)

	require.NoError(t, ls.Remove(ctx, key))

	_, err = ls.Open(ctx, key)
	assert.ErrorIs(t, err, ErrFileNotFound)

	// Removing an absent key is fine.
	assert.NoError(t, ls.Remove(ctx, key))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Open(ctx, "../../etc/passwd")
	assert.Error(t, err)

	err = ls.Remove(ctx, "../outside")
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c.pdf", sanitizeFilename("a/b\\c.pdf"))
	assert.Equal(t, "_report.txt", sanitizeFilename("..report.txt"))
	assert.Equal(t, "plain.txt", sanitizeFilename("plain.txt"))
}
