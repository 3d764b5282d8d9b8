package task

import "math"

// CompletedCount counts checklist items marked as completed.
func CompletedCount(items []ChecklistItem) int {
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	return done
}

// DeriveFromChecklist computes progress as round(100*completed/total) and
// the status implied by it. An empty checklist gives 0 and Pending.
func DeriveFromChecklist(items []ChecklistItem) (int, Status) {
	progress := 0
	if total := len(items); total > 0 {
		progress = int(math.Round(float64(CompletedCount(items)) * 100 / float64(total)))
	}
	return progress, StatusFromProgress(progress)
}

func StatusFromProgress(progress int) Status {
	switch {
	case progress >= 100:
		return StatusCompleted
	case progress > 0:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// ReplaceChecklist swaps the checklist and re-derives progress and status,
// overriding any status set before.
func (t *Task) ReplaceChecklist(items []ChecklistItem) {
	if items == nil {
		items = []ChecklistItem{}
	}
	t.TodoChecklist = items
	t.Progress, t.Status = DeriveFromChecklist(items)
}

// ApplyCompletedStatus marks the task Completed and cascades to the
// checklist: every item completed, progress 100. The reverse direction goes
// through ReplaceChecklist.
func ApplyCompletedStatus(t *Task) *Task {
	t.Status = StatusCompleted
	for i := range t.TodoChecklist {
		t.TodoChecklist[i].Completed = true
	}
	t.Progress = 100
	return t
}
