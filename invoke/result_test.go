package invoke

import (
	"encoding/json"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		stdout     string
		wantOutput string
		wantRaw    string
		wantHasRaw bool
		wantKind   Kind
	}{
		{
			name:       "bare string",
			stdout:     `"hello"`,
			wantOutput: `"\"hello\""`,
			wantRaw:    "hello",
			wantHasRaw: true,
			wantKind:   KindScalar,
		},
		{
			name:       "object has no raw output",
			stdout:     `{"a":1}`,
			wantOutput: `"{\"a\":1}"`,
			wantKind:   KindOther,
		},
		{
			name:       "member order and whitespace",
			stdout:     "{\n  \"b\": 2,\n  \"a\": [1, 2]\n}\n",
			wantOutput: `"{\"b\":2,\"a\":[1,2]}"`,
			wantKind:   KindOther,
		},
		{
			name:       "single string element",
			stdout:     `["only"]`,
			wantOutput: `"[\"only\"]"`,
			wantRaw:    "only",
			wantHasRaw: true,
			wantKind:   KindCollection,
		},
		{
			name:       "single object element",
			stdout:     `[ {"id": "ocid1.x"} ]`,
			wantOutput: `"[{\"id\":\"ocid1.x\"}]"`,
			wantRaw:    `{"id":"ocid1.x"}`,
			wantHasRaw: true,
			wantKind:   KindCollection,
		},
		{
			name:       "single number element",
			stdout:     `[42]`,
			wantOutput: `"[42]"`,
			wantRaw:    "42",
			wantHasRaw: true,
			wantKind:   KindCollection,
		},
		{
			name:       "null element",
			stdout:     `[null]`,
			wantOutput: `"[null]"`,
			wantKind:   KindCollection,
		},
		{
			name:       "two elements",
			stdout:     `["a","b"]`,
			wantOutput: `"[\"a\",\"b\"]"`,
			wantKind:   KindCollection,
		},
		{
			name:       "empty array",
			stdout:     `[]`,
			wantOutput: `"[]"`,
			wantKind:   KindCollection,
		},
		{
			name:       "empty string",
			stdout:     `""`,
			wantOutput: `"\"\""`,
			wantKind:   KindScalar,
		},
		{
			name:       "blank stdout",
			stdout:     " \n",
			wantOutput: `"{}"`,
			wantKind:   KindOther,
		},
		{
			name:       "no html escaping",
			stdout:     `"<a&b>"`,
			wantOutput: `"\"<a&b>\""`,
			wantRaw:    "<a&b>",
			wantHasRaw: true,
			wantKind:   KindScalar,
		},
		{
			name:       "number",
			stdout:     `7`,
			wantOutput: `"7"`,
			wantKind:   KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(ExecutionResult{Stdout: tt.stdout})
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got.Output != tt.wantOutput {
				t.Fatalf("Output = %s, want %s", got.Output, tt.wantOutput)
			}
			if got.HasRaw != tt.wantHasRaw || got.RawOutput != tt.wantRaw {
				t.Fatalf("RawOutput = %q (%v), want %q (%v)", got.RawOutput, got.HasRaw, tt.wantRaw, tt.wantHasRaw)
			}
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestNormalizeOutputDecodesTwice(t *testing.T) {
	stdout := `{"data":{"name":"tenancy \"prod\"","tags":["a","b"]}}`
	got, err := Normalize(ExecutionResult{Stdout: stdout})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	var once string
	if err := json.Unmarshal([]byte(got.Output), &once); err != nil {
		t.Fatalf("first decode: %v", err)
	}
	if once != stdout {
		t.Fatalf("first decode = %s, want %s", once, stdout)
	}
	var twice map[string]any
	if err := json.Unmarshal([]byte(once), &twice); err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if _, ok := twice["data"]; !ok {
		t.Fatalf("second decode lost data: %v", twice)
	}
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := Normalize(ExecutionResult{Stdout: "not json"})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if ErrorCode(err) != ErrorCodeParseFailure {
		t.Fatalf("code = %q, want %q", ErrorCode(err), ErrorCodeParseFailure)
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		stderr string
		want   string
	}{
		{stderr: "boom", want: `Failed: "boom"`},
		{stderr: "", want: `Failed: ""`},
		{stderr: "ServiceError:\n{\"code\": \"NotAuthorized\"}", want: `Failed: "ServiceError:\n{\"code\": \"NotAuthorized\"}"`},
	}
	for _, tt := range tests {
		if got := FailureMessage(ExecutionResult{ExitCode: 1, Stderr: tt.stderr}); got != tt.want {
			t.Fatalf("FailureMessage(%q) = %s, want %s", tt.stderr, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindScalar.String() != "scalar" || KindCollection.String() != "collection" || KindOther.String() != "other" {
		t.Fatalf("unexpected kind names: %s %s %s", KindScalar, KindCollection, KindOther)
	}
}
