package placeholder

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestURL(t *testing.T) {
	if got := URL("https://addon.example/", "Some Movie & Co"); got != "https://addon.example/placeholder/poster.png?title=Some+Movie+%26+Co" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := URL("", "X"); got != "/placeholder/poster.png?title=X" {
		t.Fatalf("unexpected relative url %q", got)
	}
}

func TestRenderProducesPoster(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "A Very Long Title That Needs Wrapping Across Several Lines"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := Render(&a, "Same"); err != nil {
		t.Fatal(err)
	}
	if err := Render(&b, "Same"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("expected identical output for the same title")
	}
}

func TestRenderEmptyTitle(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "   "); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected png output")
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three four", 9)
	if strings.Join(lines, "|") != "one two|three|four" {
		t.Fatalf("unexpected lines %q", lines)
	}
	lines = wrap("abcdefghijkl", 5)
	if strings.Join(lines, "|") != "abcde|fghij|kl" {
		t.Fatalf("unexpected hard split %q", lines)
	}
}
