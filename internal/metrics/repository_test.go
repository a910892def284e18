package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/poemon/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferBoundedWhileDatabaseFails(t *testing.T) {
	cfg := Config{
		DBPath:       filepath.Join(t.TempDir(), "metrics.db"),
		BatchSize:    5,
		BatchTimeout: time.Hour,
	}
	repo, err := NewRepository(cfg, logger.Default())
	require.NoError(t, err)
	r := repo.(*repository)

	// every flush from here on fails at Begin
	require.NoError(t, r.db.Close())

	start := time.Unix(1700000000, 0)
	for i := 0; i < 1000; i++ {
		_ = repo.Record(&Snapshot{Timestamp: start.Add(time.Duration(i) * time.Second)})
	}

	r.mu.Lock()
	buffered := len(r.buffer)
	oldest := r.buffer[0].Timestamp
	newest := r.buffer[len(r.buffer)-1].Timestamp
	dropped := r.dropped
	r.mu.Unlock()

	assert.Equal(t, 5*maxBufferedBatches, buffered)
	assert.Equal(t, 1000-buffered, dropped)
	assert.Equal(t, start.Add(999*time.Second), newest, "newest snapshot is kept")
	assert.Equal(t, start.Add(time.Duration(1000-buffered)*time.Second), oldest)

	// closing still stops the flusher; the checkpoint on a closed db fails
	assert.Error(t, repo.Close())
}

func TestBufferLimitUnbatched(t *testing.T) {
	r := &repository{cfg: Config{BatchSize: 0}}
	assert.Equal(t, maxBufferedBatches, r.bufferLimit())
}
