package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"streamrelay/pkg/models"
)

func TestHistoryAppendAndSnapshot(t *testing.T) {
	req := require.New(t)
	h := NewHistory(3)

	req.Empty(h.Snapshot())

	for i := 0; i < 3; i++ {
		h.Append(&models.ChatEvent{Text: fmt.Sprintf("m%d", i)})
	}
	req.Equal([]string{"m0", "m1", "m2"}, texts(h.Snapshot()))

	h.Append(&models.ChatEvent{Text: "m3"})
	req.Equal(3, h.Len())
	req.Equal([]string{"m1", "m2", "m3"}, texts(h.Snapshot()))
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	h := NewHistory(10)
	h.Append(&models.ChatEvent{Text: "m0"})

	snap := h.Snapshot()
	h.Append(&models.ChatEvent{Text: "m1"})

	req.Len(snap, 1)
	req.Equal(2, h.Len())
}
