package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	qerrors "github.com/vango-dev/querysync/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "parse", "?b=2&a=hello+world&t=x&t=y")
	if err != nil {
		t.Fatal(err)
	}
	want := "b=2\na=hello world\nt=x\nt=y\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestParseCommandJSON(t *testing.T) {
	out, err := run(t, "parse", "--json", "?color=blue")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"color": "blue"`) {
		t.Errorf("output = %q", out)
	}
}

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"encode", "color=blue", "q=a b"}, "?color=blue&q=a+b\n"},
		{[]string{"encode", "--bare", "t=1", "t=2"}, "t=1&t=2\n"},
		{[]string{"encode"}, "\n"},
	}

	for _, tt := range tests {
		out, err := run(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if out != tt.want {
			t.Errorf("%v: output = %q, want %q", tt.args, out, tt.want)
		}
	}
}

func TestEncodeMalformedPair(t *testing.T) {
	_, err := run(t, "encode", "novalue")

	var qe *qerrors.QueryError
	if !errors.As(err, &qe) || qe.Code != "Q040" {
		t.Errorf("error = %v, want Q040", err)
	}
}

func TestMergeCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"overwrite and append", []string{"merge", "?a=1&b=2", "a=x", "c=3"}, "?a=x&b=2&c=3\n"},
		{"drop", []string{"merge", "?a=1&b=2", "--drop", "a"}, "?b=2\n"},
		{"drop everything", []string{"merge", "?a=1", "--drop", "a"}, "\n"},
		{"missing prefix", []string{"merge", "a=1", "b=2"}, "?a=1&b=2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestSyncCommand(t *testing.T) {
	out, err := run(t, "sync", "?color=red&x=1", "color=blue", "page:int=1", "tags:strings=a,b")
	if err != nil {
		t.Fatal(err)
	}
	want := "search: ?color=red&x=1&page=1&tags=a&tags=b\ncolor: red\npage: 1\ntags: a,b\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestSyncCommandRename(t *testing.T) {
	out, err := run(t, "sync", "?c=red", "color=blue", "--key", "color=c")
	if err != nil {
		t.Fatal(err)
	}
	if out != "search: ?c=red\ncolor: red\n" {
		t.Errorf("output = %q", out)
	}
}

func TestSyncCommandBadKind(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"unknown kind", "n:complex=1"},
		{"bad int default", "n:int=abc"},
		{"bad bool default", "n:bool=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "sync", "", tt.arg)
			if err == nil {
				t.Fatal("expected error")
			}
			if qe := qerrors.FromError(err, qerrors.CodeCommandFailed); qe.Code != "Q041" {
				t.Errorf("code = %q, want Q041", qe.Code)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != "dev\n" {
		t.Errorf("output = %q", out)
	}
}
