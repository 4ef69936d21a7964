package chunk

import (
	"strings"
	"testing"

	"ai-tutor-be/pkg/fault"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantLens  []int
	}{
		{
			name:      "empty text yields no chunks",
			text:      "",
			chunkSize: 500,
			overlap:   50,
			wantLens:  nil,
		},
		{
			name:      "text shorter than chunk size yields one chunk",
			text:      strings.Repeat("a", 120),
			chunkSize: 500,
			overlap:   50,
			wantLens:  []int{120},
		},
		{
			name:      "text equal to chunk size yields one chunk",
			text:      strings.Repeat("a", 500),
			chunkSize: 500,
			overlap:   50,
			wantLens:  []int{500},
		},
		{
			name:      "1200 chars at 500/50 yields three chunks",
			text:      strings.Repeat("lorem ipsum dolor sit amet, ", 50)[:1200],
			chunkSize: 500,
			overlap:   50,
			wantLens:  []int{500, 500, 300},
		},
		{
			name:      "zero overlap",
			text:      strings.Repeat("b", 1000),
			chunkSize: 400,
			overlap:   0,
			wantLens:  []int{400, 400, 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, tt.chunkSize, tt.overlap)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}

			if len(chunks) != len(tt.wantLens) {
				t.Fatalf("len(chunks) = %d, want %d", len(chunks), len(tt.wantLens))
			}

			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk %d has Index %d", i, c.Index)
				}
				if got := len([]rune(c.Text)); got != tt.wantLens[i] {
					t.Errorf("chunk %d length = %d, want %d", i, got, tt.wantLens[i])
				}
			}
		})
	}
}

// Concatenating the non-overlapping prefix of every chunk but the last,
// plus the full last chunk, must reconstruct the input exactly.
func TestSplitReconstruction(t *testing.T) {
	cases := []struct {
		text      string
		chunkSize int
		overlap   int
	}{
		{strings.Repeat("x", 1200), 500, 50},
		{strings.Repeat("photosynthesis occurs in chloroplasts. ", 40), 300, 60},
		{strings.Repeat("α", 777), 100, 25}, // multi-byte runes
		{strings.Repeat("y", 901), 500, 50},
		{strings.Repeat("z", 73), 73, 10},
	}

	for _, tc := range cases {
		chunks, err := Split(tc.text, tc.chunkSize, tc.overlap)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}

		step := tc.chunkSize - tc.overlap
		var sb strings.Builder
		for i, c := range chunks {
			runes := []rune(c.Text)
			if i == len(chunks)-1 {
				sb.WriteString(c.Text)
			} else {
				sb.WriteString(string(runes[:step]))
			}
		}

		if sb.String() != tc.text {
			t.Errorf("reconstruction mismatch for chunkSize=%d overlap=%d (got %d runes, want %d)",
				tc.chunkSize, tc.overlap, len([]rune(sb.String())), len([]rune(tc.text)))
		}
	}
}

func TestSplitCountFormula(t *testing.T) {
	// count = ceil((len - overlap) / (size - overlap)) for len > size
	cases := []struct {
		length    int
		chunkSize int
		overlap   int
	}{
		{1200, 500, 50},
		{950, 500, 50},
		{901, 500, 50},
		{1350, 500, 50},
		{5000, 1500, 200},
		{499, 500, 50},
		{500, 500, 50},
		{501, 500, 50},
	}

	for _, tc := range cases {
		text := strings.Repeat("a", tc.length)
		chunks, err := Split(text, tc.chunkSize, tc.overlap)
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}

		step := tc.chunkSize - tc.overlap
		want := 1
		if tc.length > tc.chunkSize {
			want = (tc.length - tc.overlap + step - 1) / step
		}

		if len(chunks) != want {
			t.Errorf("length=%d size=%d overlap=%d: got %d chunks, want %d",
				tc.length, tc.chunkSize, tc.overlap, len(chunks), want)
		}

		got, err := Count(text, tc.chunkSize, tc.overlap)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if got != len(chunks) {
			t.Errorf("Count() = %d, Split produced %d", got, len(chunks))
		}
	}
}

func TestSplitInvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"overlap equals chunk size", 500, 500},
		{"overlap exceeds chunk size", 500, 600},
		{"negative overlap", 500, -1},
		{"zero chunk size", 0, 0},
		{"negative chunk size", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split("some text that should never be chunked", tt.chunkSize, tt.overlap)
			if err == nil {
				t.Fatal("Split() error = nil, want InvalidArgument")
			}
			if !fault.IsKind(err, fault.KindInvalidArgument) {
				t.Errorf("error kind = %v, want invalid_argument", fault.KindOf(err))
			}
			if chunks != nil {
				t.Errorf("chunks = %v, want nil on error", chunks)
			}
		})
	}
}
