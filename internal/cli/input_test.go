package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("  hello world  \n"))

	got, err := GetSimpleText(r, "Say something", &out)
	if err != nil {
		t.Fatalf("GetSimpleText error: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("unexpected text: %q", got)
	}
	if !strings.Contains(out.String(), "Say something") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}

func TestGetSimpleText_PartialLineBeforeEOF(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("no newline"))

	got, err := GetSimpleText(r, "p", &out)
	if err != nil {
		t.Fatalf("GetSimpleText error: %v", err)
	}
	if got != "no newline" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestGetInt(t *testing.T) {
	var out bytes.Buffer

	got, err := GetInt(bufio.NewReader(strings.NewReader("42\n")), "n", 7, &out)
	if err != nil || got != 42 {
		t.Fatalf("want 42, got %d (%v)", got, err)
	}

	got, err = GetInt(bufio.NewReader(strings.NewReader("\n")), "n", 7, &out)
	if err != nil || got != 7 {
		t.Fatalf("empty line must fall back, got %d (%v)", got, err)
	}

	if _, err = GetInt(bufio.NewReader(strings.NewReader("nope\n")), "n", 7, &out); err == nil {
		t.Fatal("expected an error for a non-number")
	}
}

func TestGetBool(t *testing.T) {
	var out bytes.Buffer

	for text, want := range map[string]bool{"y\n": true, "yes\n": true, "n\n": false, "no\n": false} {
		got, err := GetBool(bufio.NewReader(strings.NewReader(text)), "publish", false, &out)
		if err != nil || got != want {
			t.Fatalf("%q: want %v, got %v (%v)", text, want, got, err)
		}
	}

	got, err := GetBool(bufio.NewReader(strings.NewReader("\n")), "publish", true, &out)
	if err != nil || !got {
		t.Fatalf("empty line must fall back, got %v (%v)", got, err)
	}

	if _, err := GetBool(bufio.NewReader(strings.NewReader("maybe\n")), "publish", false, &out); err == nil {
		t.Fatal("expected an error for a non y/n answer")
	}
}

func TestGetMultiline(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("flour\nwater\nsalt\n\n"))

	got, err := GetMultiline(r, "Ingredients", &out)
	if err != nil {
		t.Fatalf("GetMultiline error: %v", err)
	}
	if got != "flour\nwater\nsalt" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestGetPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()
	readPassword = func(fd int) ([]byte, error) {
		return []byte("s3cret"), nil
	}

	var out bytes.Buffer
	pw, err := GetPassword(&out)
	if err != nil {
		t.Fatalf("GetPassword error: %v", err)
	}
	if string(pw) != "s3cret" {
		t.Fatalf("unexpected password: %q", pw)
	}
	if !strings.Contains(out.String(), "Enter password") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}
