package memorylimiter

import (
	"context"
	"testing"
	"time"

	"github.com/open-rails/coffeeshop/ratelimit"
)

func TestLimiter_SlidingWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(ratelimit.Limits{ratelimit.BucketDrinksCreate: {Limit: 2, Window: time.Minute}})
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, err := l.Allow(ctx, ratelimit.BucketDrinksCreate, "u1"); err != nil || !ok {
			t.Fatalf("request %d: expected allow, got %v %v", i, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, ratelimit.BucketDrinksCreate, "u1"); ok {
		t.Fatalf("expected third request denied")
	}
	if ok, _ := l.Allow(ctx, ratelimit.BucketDrinksCreate, "u2"); !ok {
		t.Fatalf("other subjects have their own window")
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Allow(ctx, ratelimit.BucketDrinksCreate, "u1"); !ok {
		t.Fatalf("expected allow once the window has passed")
	}
}

func TestLimiter_RequiresBucketAndKey(t *testing.T) {
	l := New(nil)
	if _, err := l.Allow(context.Background(), "", "u1"); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
	if ok, err := l.Allow(context.Background(), ratelimit.BucketDrinksDelete, "u1"); err != nil || !ok {
		t.Fatalf("default limit should allow, got %v %v", ok, err)
	}
}
