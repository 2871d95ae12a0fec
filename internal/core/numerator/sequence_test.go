package numerator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_Next(t *testing.T) {
	seq := NewSequence(DefaultConfig("CUR"), 0)

	assert.Equal(t, "CUR-00001", seq.Next())
	assert.Equal(t, "CUR-00002", seq.Next())
	assert.Equal(t, int64(2), seq.Current())
}

func TestSequence_ConcurrentNumbersAreUnique(t *testing.T) {
	seq := NewSequence(DefaultConfig("NOM"), 0)

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				code := seq.Next()
				mu.Lock()
				seen[code] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
	assert.Equal(t, int64(1000), seq.Current())
}

func TestResume(t *testing.T) {
	cfg := DefaultConfig("UOM")
	existing := []any{"UOM-00003", "UOM-00011", "CUR-00099", "legacy", nil, 42, "UOM-x"}

	seq := Resume(cfg, existing)
	assert.Equal(t, "UOM-00012", seq.Next())

	assert.Equal(t, "UOM-00001", Resume(cfg, nil).Next())
}

func TestFormatAndParse(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		num       int64
		formatted string
	}{
		{name: "default width", cfg: DefaultConfig("WH"), num: 7, formatted: "WH-00007"},
		{name: "custom width", cfg: Config{Prefix: "CP", PadWidth: 3}, num: 12, formatted: "CP-012"},
		{name: "zero width falls back", cfg: Config{Prefix: "X"}, num: 1, formatted: "X-00001"},
		{name: "wider than pad", cfg: Config{Prefix: "N", PadWidth: 2}, num: 1234, formatted: "N-1234"},
		{name: "no prefix", cfg: Config{PadWidth: 4}, num: 9, formatted: "0009"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.formatted, Format(tt.cfg, tt.num))
			assert.Equal(t, tt.num, ParseNumber(tt.cfg, tt.formatted))
		})
	}

	assert.Equal(t, int64(-1), ParseNumber(DefaultConfig("A"), "B-00001"))
	assert.Equal(t, int64(-1), ParseNumber(DefaultConfig("A"), "A-abc"))
}
