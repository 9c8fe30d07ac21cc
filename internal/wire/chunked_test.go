package wire

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkedRoundTrip(t *testing.T) {
	assert := require.New(t)

	var buf bytes.Buffer
	assert.NoError(writeChunked(&buf, strings.NewReader("the quick brown fox")))

	br := bufio.NewReader(&buf)
	cr := newChunkedReader(br)
	out, err := io.ReadAll(cr)
	assert.NoError(err)
	assert.Equal("the quick brown fox", string(out))
}

func TestChunkedReaderStopsAtZeroChunk(t *testing.T) {
	assert := require.New(t)

	raw := "4\r\nabcd\r\n0\r\n\r\nGARBAGE"
	br := bufio.NewReader(strings.NewReader(raw))
	cr := newChunkedReader(br)

	out, err := io.ReadAll(cr)
	assert.NoError(err)
	assert.Equal("abcd", string(out))
}
