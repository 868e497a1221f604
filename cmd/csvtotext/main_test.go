package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// run executes the CLI with args and returns stdout, stderr and the error.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvert_Stdin(t *testing.T) {
	stdout, stderr, err := run(t, "fire;f__e;ild;i_d\nwater;w___r;vatten;v____n\n", "convert")
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if want := "fire:f__e|ild:i_d\nwater:w___r|vatten:v____n\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestConvert_InputTooLarge(t *testing.T) {
	t.Setenv("CONVERT_MAX_FILE_SIZE", "16")
	input := strings.Repeat("a;b;c;d\n", 4)

	_, _, err := run(t, input, "convert")
	if err == nil || !strings.Contains(err.Error(), "FILE001") {
		t.Errorf("stdin error = %v, want FILE001", err)
	}

	path := writeFile(t, t.TempDir(), "big.csv", input)
	_, _, err = run(t, "", "convert", path)
	if err == nil || !strings.Contains(err.Error(), "FILE001") {
		t.Errorf("file error = %v, want FILE001", err)
	}

	_, _, err = run(t, input, "validate")
	if err == nil || errors.Is(err, errInvalidInput) {
		t.Errorf("validate error = %v, want a read failure", err)
	}
}

func TestConvert_StdinByteOrderMark(t *testing.T) {
	stdout, _, err := run(t, "\uFEFF;;;\r\nfire;f__e;ild;i_d\r\n", "convert")
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if want := "fire:f__e|ild:i_d\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestConvert_FilesInOrderWithReport(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "one,1,en,1\nbroken\n")
	b := writeFile(t, dir, "b.csv", "two;2;to;2\n")

	stdout, stderr, err := run(t, "", "convert", a, b)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if want := "one:1|en:1\ntwo:2|to:2\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if want := "a.csv - the following rows had errors:\n2: broken\n"; stderr != want {
		t.Errorf("stderr = %q, want %q", stderr, want)
	}
}

func TestConvert_Strict(t *testing.T) {
	_, _, err := run(t, "a,b,c,d\nshort\n", "convert", "--strict")
	if !errors.Is(err, errInvalidInput) {
		t.Errorf("error = %v, want errInvalidInput", err)
	}
}

func TestConvert_CustomSeparators(t *testing.T) {
	stdout, _, err := run(t, "a,b,c,d", "convert", "--word-hint-sep", "=", "--pair-sep", " -> ")
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if stdout != "a=b -> c=d\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConvert_SameSeparatorsRejected(t *testing.T) {
	_, _, err := run(t, "a,b,c,d", "convert", "--word-hint-sep", "|", "--pair-sep", "|")
	if err == nil {
		t.Fatal("expected error for identical separators")
	}
}

func TestConvert_JSONOutput(t *testing.T) {
	stdout, _, err := run(t, "a,b,c,d\n", "convert", "--format", "json")
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}

	var got core.Batch
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if diff := cmp.Diff([]string{"a:b|c:d"}, got.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if len(got.Files) != 1 || got.Files[0].Name != "stdin" || got.Files[0].Delimiter != core.Comma {
		t.Errorf("files = %+v", got.Files)
	}
}

func TestConvert_YAMLToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.yaml")
	stdout, _, err := run(t, "a;b;c;d\n", "convert", "-f", "yaml", "-o", out)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty when -o is set", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Lines []string `yaml:"lines"`
		Files []struct {
			Delimiter string `yaml:"delimiter"`
		} `yaml:"files"`
	}
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if diff := cmp.Diff([]string{"a:b|c:d"}, got.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if got.Files[0].Delimiter != ";" {
		t.Errorf("delimiter = %q, want ;", got.Files[0].Delimiter)
	}
}

func TestConvert_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]any{"ocean, sea", "o___n", "hav", "h_v"})
	f.SetSheetRow(sheet, "A2", &[]any{"fire", "f__e", "ild"})
	path := filepath.Join(t.TempDir(), "words.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	stdout, stderr, err := run(t, "", "convert", path)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if want := "ocean, sea:o___n|hav:h_v\nfire:f__e|ild:\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if stderr != "" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestConvert_InvalidFormat(t *testing.T) {
	_, _, err := run(t, "a,b,c,d", "convert", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("error = %v, want invalid format", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantOut string
		wantErr bool
	}{
		{"valid", "fire,f__e:ild,i_d\n", nil, "", false},
		{"empty input", "", nil, "", false},
		{"invalid lines", "fire,f__e:ild,i_d\r\nfire\r\n", nil, "1 invalid line(s):\n2: fire\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := run(t, tt.stdin, append([]string{"validate"}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if stdout != tt.wantOut {
				t.Errorf("stdout = %q, want %q", stdout, tt.wantOut)
			}
		})
	}
}

func TestValidate_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "edited.txt", "a,b:c,d\nnope\n")
	stdout, _, err := run(t, "", "validate", "-f", "json", path)
	if !errors.Is(err, errInvalidInput) {
		t.Fatalf("error = %v, want errInvalidInput", err)
	}

	var got validateResult
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatal(err)
	}
	want := validateResult{InvalidRows: []core.InvalidRow{{Index: 2, Row: "nope"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}
