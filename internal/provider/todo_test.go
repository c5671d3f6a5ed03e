package provider

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func todoAt(now time.Time) *TodoAdapter {
	a := NewTodoAdapter()
	a.now = func() time.Time { return now }
	return a
}

func TestTodoAdapter_Deterministic(t *testing.T) {
	t.Parallel()

	a := todoAt(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	input := map[string]any{"bucket": "work", "include_completed": true}

	first, err := a.Fetch(context.Background(), input)
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	second, err := a.Fetch(context.Background(), input)
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input produced different lists:\n%+v\n%+v", first, second)
	}
}

func TestTodoAdapter_AllBuckets(t *testing.T) {
	t.Parallel()

	a := todoAt(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))

	for _, bucket := range []string{"work", "home", "errands", "personal"} {
		raw, err := a.Fetch(context.Background(), map[string]any{
			"bucket": bucket, "include_completed": true,
		})
		if err != nil {
			t.Fatalf("Fetch(%s) = %v", bucket, err)
		}
		out := raw.(TodoOutput)

		if out.Bucket != bucket {
			t.Errorf("bucket echoed as %q", out.Bucket)
		}
		if out.TotalItems != len(out.Items) {
			t.Errorf("%s: total_items %d != len(items) %d", bucket, out.TotalItems, len(out.Items))
		}
		if out.CompletedCount+out.PendingCount != out.TotalItems {
			t.Errorf("%s: counts don't add up: %d + %d != %d",
				bucket, out.CompletedCount, out.PendingCount, out.TotalItems)
		}
		for _, item := range out.Items {
			if item.Bucket != bucket {
				t.Errorf("%s: item %s carries bucket %q", bucket, item.ID, item.Bucket)
			}
			if _, ok := priorityRank[item.Priority]; !ok {
				t.Errorf("%s: item %s has unknown priority %q", bucket, item.ID, item.Priority)
			}
		}
	}
}

func TestTodoAdapter_ExcludesCompletedByDefault(t *testing.T) {
	t.Parallel()

	a := todoAt(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))

	for _, bucket := range []string{"work", "home", "errands", "personal"} {
		raw, err := a.Fetch(context.Background(), map[string]any{
			"bucket": bucket, "include_completed": false,
		})
		if err != nil {
			t.Fatalf("Fetch(%s) = %v", bucket, err)
		}
		out := raw.(TodoOutput)
		if out.CompletedCount != 0 {
			t.Errorf("%s: completed items leaked into filtered list", bucket)
		}
		for _, item := range out.Items {
			if item.Completed {
				t.Errorf("%s: item %s is completed but include_completed=false", bucket, item.ID)
			}
		}
	}
}

func TestTodoAdapter_SortedByPriorityThenDue(t *testing.T) {
	t.Parallel()

	a := todoAt(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))

	for _, bucket := range []string{"work", "home", "errands", "personal"} {
		raw, err := a.Fetch(context.Background(), map[string]any{
			"bucket": bucket, "include_completed": true,
		})
		if err != nil {
			t.Fatalf("Fetch(%s) = %v", bucket, err)
		}
		items := raw.(TodoOutput).Items
		for i := 1; i < len(items); i++ {
			prev, cur := items[i-1], items[i]
			if priorityRank[prev.Priority] > priorityRank[cur.Priority] {
				t.Errorf("%s: %q (%s) sorted after %q (%s)",
					bucket, prev.Title, prev.Priority, cur.Title, cur.Priority)
			}
			if prev.Priority == cur.Priority && prev.DueDate != "" && cur.DueDate != "" &&
				prev.DueDate > cur.DueDate {
				t.Errorf("%s: due dates out of order within priority %s", bucket, cur.Priority)
			}
		}
	}
}

func TestTodoAdapter_UnknownBucket(t *testing.T) {
	t.Parallel()

	a := NewTodoAdapter()
	if _, err := a.Fetch(context.Background(), map[string]any{"bucket": "garage"}); err == nil {
		t.Error("Fetch() accepted a bucket the schema should never pass through")
	}
}
