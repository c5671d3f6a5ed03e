package provider

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// TodoAdapter serves a synthetic task list. Like the calendar there is no
// live backend yet; items are generated deterministically per bucket so the
// same query always returns the same list.
type TodoAdapter struct {
	now func() time.Time
}

// NewTodoAdapter creates the todo adapter.
func NewTodoAdapter() *TodoAdapter {
	return &TodoAdapter{now: time.Now}
}

// Priority levels, in sort order. Urgent items surface first.
const (
	priorityUrgent = "urgent"
	priorityHigh   = "high"
	priorityMedium = "medium"
	priorityLow    = "low"
)

var priorityRank = map[string]int{
	priorityUrgent: 0,
	priorityHigh:   1,
	priorityMedium: 2,
	priorityLow:    3,
}

type todoTemplate struct {
	title    string
	priority string
	tags     []string
	dueDays  int // -1 means no due date
}

var todoTemplates = map[string][]todoTemplate{
	"work": {
		{"Prepare for client presentation", priorityHigh, []string{"presentation", "client"}, 0},
		{"Review quarterly reports", priorityHigh, []string{"reports", "quarterly"}, 1},
		{"Code review for PR #123", priorityMedium, []string{"code-review", "pr"}, 0},
		{"Update project documentation", priorityMedium, []string{"documentation", "project"}, 2},
		{"Submit expense report", priorityMedium, []string{"expenses", "admin"}, 3},
		{"Team meeting prep", priorityLow, []string{"meeting", "prep"}, 1},
		{"Plan sprint retrospective", priorityMedium, []string{"sprint", "retro"}, 5},
		{"Update dependencies in project", priorityLow, []string{"maintenance", "deps"}, 7},
	},
	"home": {
		{"Pay utility bills", priorityHigh, []string{"bills", "utilities"}, 2},
		{"Fix leaky faucet", priorityMedium, []string{"maintenance", "plumbing"}, 3},
		{"Deep clean kitchen", priorityMedium, []string{"cleaning", "kitchen"}, 5},
		{"Schedule HVAC maintenance", priorityMedium, []string{"maintenance", "hvac"}, 10},
		{"Organize home office", priorityLow, []string{"organization", "office"}, 7},
		{"Clean the garage", priorityLow, []string{"cleaning", "garage"}, 14},
		{"Plant spring garden", priorityLow, []string{"gardening", "spring"}, 21},
		{"Update home insurance", priorityLow, []string{"insurance", "admin"}, 30},
	},
	"errands": {
		{"Buy birthday gift", priorityHigh, []string{"gift", "birthday"}, 3},
		{"Grocery shopping", priorityMedium, []string{"shopping", "food"}, 1},
		{"Go to bank", priorityMedium, []string{"banking", "finance"}, 1},
		{"Pharmacy pickup", priorityMedium, []string{"health", "pharmacy"}, 1},
		{"Post office - mail package", priorityMedium, []string{"shipping", "mail"}, 2},
		{"Pick up dry cleaning", priorityLow, []string{"pickup", "clothes"}, 2},
		{"Return library books", priorityLow, []string{"library", "books"}, 5},
		{"Hardware store - get screws", priorityLow, []string{"hardware", "supplies"}, 7},
	},
	"personal": {
		{"Call mom", priorityMedium, []string{"family", "call"}, 2},
		{"Schedule dentist appointment", priorityMedium, []string{"health", "dentist"}, 10},
		{"Plan weekend trip", priorityMedium, []string{"travel", "planning"}, 14},
		{"Write in journal", priorityLow, []string{"writing", "journal"}, 1},
		{"Learn Spanish - Lesson 5", priorityLow, []string{"learning", "spanish"}, 7},
		{"Backup photos to cloud", priorityLow, []string{"tech", "backup"}, 21},
		{"Read 'The Great Gatsby'", priorityLow, []string{"reading", "books"}, 30},
		{"Update resume", priorityLow, []string{"career", "resume"}, 60},
	},
}

// Fetch builds the bucket's item list, filters completed items unless asked
// for, and sorts urgent-first then by due date.
func (a *TodoAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	in, err := decodeInput[TodoInput](input)
	if err != nil {
		return nil, err
	}
	templates, ok := todoTemplates[in.Bucket]
	if !ok {
		return nil, fmt.Errorf("unknown bucket %q", in.Bucket)
	}

	now := a.now().UTC()
	h := seed("todo", in.Bucket)
	count := 3 + int(h%4) // 3..6 items per bucket
	offset := int((h >> 8) % uint64(len(templates)))

	items := make([]TodoItem, 0, count)
	for i := 0; i < count; i++ {
		tpl := templates[(offset+i)%len(templates)]
		bit := (h >> uint(16+i*4)) % 5
		completed := bit == 0 // roughly one in five

		item := TodoItem{
			ID:        fmt.Sprintf("%s_todo_%d", in.Bucket, i+1),
			Title:     tpl.title,
			Priority:  tpl.priority,
			Completed: completed,
			CreatedAt: now.AddDate(0, 0, -1-int((h>>uint(20+i*3))%10)).Format(time.RFC3339),
			Bucket:    in.Bucket,
			Tags:      tpl.tags,
		}
		if tpl.dueDays >= 0 {
			item.DueDate = now.AddDate(0, 0, tpl.dueDays).Format(time.RFC3339)
		}
		items = append(items, item)
	}

	if !in.IncludeCompleted {
		kept := items[:0]
		for _, item := range items {
			if !item.Completed {
				kept = append(kept, item)
			}
		}
		items = kept
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := priorityRank[items[i].Priority], priorityRank[items[j].Priority]
		if ri != rj {
			return ri < rj
		}
		// Items without a due date sort last within a priority band.
		di, dj := items[i].DueDate, items[j].DueDate
		if (di == "") != (dj == "") {
			return di != ""
		}
		return di < dj
	})

	completed := 0
	for _, item := range items {
		if item.Completed {
			completed++
		}
	}

	return TodoOutput{
		Bucket:         in.Bucket,
		Items:          items,
		TotalItems:     len(items),
		CompletedCount: completed,
		PendingCount:   len(items) - completed,
	}, nil
}

func (a *TodoAdapter) Normalize(raw any) (map[string]any, error) {
	out, ok := raw.(TodoOutput)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", raw)
	}
	if out.Items == nil {
		out.Items = []TodoItem{}
	}
	return encodeOutput(out)
}
