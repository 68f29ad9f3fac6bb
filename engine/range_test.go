package engine

import "testing"

func TestParseRangeHeaderMultiple(t *testing.T) {
	ranges, err := parseRangeHeader("bytes=0-49,200-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0].Start != 0 || ranges[0].End != 50 || ranges[0].Len != 50 {
		t.Fatalf("unexpected first range: %+v", ranges[0])
	}
	if ranges[1].Start != 200 || ranges[1].End != -1 {
		t.Fatalf("unexpected second range: %+v", ranges[1])
	}
}

func TestParseRangeHeaderInvalidOrder(t *testing.T) {
	if _, err := parseRangeHeader("bytes=50-10"); err == nil {
		t.Fatal("expected an error for start >= end")
	}
}

func TestParseRangeHeaderSuffix(t *testing.T) {
	ranges, err := parseRangeHeader("bytes=-500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranges[0].Start != -1 || ranges[0].End != 500 {
		t.Fatalf("unexpected suffix range: %+v", ranges[0])
	}
}

func TestParseRangeHeaderOverlap(t *testing.T) {
	if _, err := parseRangeHeader("bytes=0-100,50-150"); err == nil {
		t.Fatal("expected an error for overlapping ranges")
	}
}

func TestParseContentRangeHeader(t *testing.T) {
	cr, err := parseContentRangeHeader("bytes 0-99/200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cr.Start != 0 || cr.End != 100 || cr.Size != 200 {
		t.Fatalf("unexpected content-range: %+v", cr)
	}
}

func TestParseContentRangeHeaderInvalid(t *testing.T) {
	if _, err := parseContentRangeHeader("bytes 100-50/200"); err == nil {
		t.Fatal("expected an error for end <= start")
	}
}
