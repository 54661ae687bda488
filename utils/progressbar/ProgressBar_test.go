package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, 10, 4)

	p.Increment()
	p.Increment()
	p.SetStatus("ε = %.2f", 0.5)

	line := p.String()
	if strings.Count(line, "█") != 5 {
		t.Errorf("string: want 5 filled cells, have %q", line)
	}
	if !strings.Contains(line, "[50.00%") || !strings.HasSuffix(line,
		"ε = 0.50") {
		t.Errorf("string: unexpected progress bar %q", line)
	}

	for i := 0; i < 10; i++ {
		p.Increment()
	}
	if p.Fraction() != 1 {
		t.Errorf("increment: progress should not exceed 100%%, have %v",
			p.Fraction())
	}

	p.Finish()
	if !strings.HasSuffix(buf.String(), "\n") ||
		!strings.Contains(buf.String(), "100.00%") {
		t.Errorf("finish: unexpected output %q", buf.String())
	}
}
