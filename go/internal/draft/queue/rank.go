package queue

import (
	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/drafterr"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/models"
)

// Densify renumbers entries (already in rank order) to 1..n in place and
// returns the entries whose rank changed.
func Densify(entries []models.QueueEntry) []models.QueueEntry {
	var changed []models.QueueEntry
	for i := range entries {
		if entries[i].Rank != i+1 {
			entries[i].Rank = i + 1
			changed = append(changed, entries[i])
		}
	}
	return changed
}

// Move returns entries with entryID placed at newRank and everything else
// shifted to keep ranks dense. The input must be in rank order.
func Move(entries []models.QueueEntry, entryID uuid.UUID, newRank int) ([]models.QueueEntry, []models.QueueEntry, error) {
	if newRank < 1 {
		return nil, nil, drafterr.New(drafterr.KindInvalidArgument, "rank must be a positive integer")
	}

	from := -1
	for i, e := range entries {
		if e.ID == entryID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, nil, drafterr.ErrQueueEntryMissing
	}

	to := newRank - 1
	if to >= len(entries) {
		to = len(entries) - 1
	}

	out := make([]models.QueueEntry, 0, len(entries))
	moved := entries[from]
	for i, e := range entries {
		if i == from {
			continue
		}
		if len(out) == to {
			out = append(out, moved)
		}
		out = append(out, e)
	}
	if len(out) == to {
		out = append(out, moved)
	}

	return out, Densify(out), nil
}
