package observability

import (
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc , broken, x=1,=skip")
	if len(got) != 2 || got["api-key"] != "abc" || got["x"] != "1" {
		t.Fatalf("headers: got=%v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty input: want nil")
	}
}

func TestSampleRatioClamps(t *testing.T) {
	cases := map[string]float64{
		"":     0.1,
		"0.5":  0.5,
		"7":    1,
		"-1":   0,
		"nope": 0.1,
	}
	for raw, want := range cases {
		t.Setenv("OTEL_SAMPLER_RATIO", raw)
		if got := sampleRatio(); got != want {
			t.Fatalf("ratio %q: want=%v got=%v", raw, want, got)
		}
	}
}
