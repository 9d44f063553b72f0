package httpclient

import "testing"

func TestPaginationBounds(t *testing.T) {
	b := DefaultPaginationBounds()
	if b.DefaultLimit != 100 || b.MaxPages != 10 || b.MaxItems != 1000 {
		t.Fatalf("unexpected defaults %+v", b)
	}

	tests := []struct {
		pages, items int
		want         bool
	}{
		{0, 0, false},
		{9, 999, false},
		{10, 0, true},
		{0, 1000, true},
		{11, 2000, true},
	}
	for _, tc := range tests {
		if got := b.Exhausted(tc.pages, tc.items); got != tc.want {
			t.Errorf("Exhausted(%d, %d) = %v, want %v", tc.pages, tc.items, got, tc.want)
		}
	}

	if b.Limit(0) != 100 || b.Limit(25) != 25 {
		t.Error("unexpected limit resolution")
	}
	if b.Remaining(990) != 10 || b.Remaining(2000) != 0 {
		t.Error("unexpected remaining")
	}
	if (PaginationBounds{}).Remaining(5) != -1 {
		t.Error("expected -1 without MaxItems")
	}
}

func TestClientBounds(t *testing.T) {
	c, err := New(Config{BaseURL: "https://api.example", MaxPages: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := c.Bounds(nil)
	if b.DefaultLimit != 100 || b.MaxPages != 4 || b.MaxItems != 1000 {
		t.Errorf("unexpected client bounds %+v", b)
	}

	b = c.Bounds(&CallOptions{MaxItems: 50})
	if b.MaxPages != 4 || b.MaxItems != 50 {
		t.Errorf("unexpected call bounds %+v", b)
	}
	if c.Bounds(nil).MaxItems != 1000 {
		t.Error("call bounds leaked into the client")
	}
}
