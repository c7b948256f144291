package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmdError = nil
	app := newApp()
	var out bytes.Buffer
	app.SetOut(&out)
	app.SetIn(strings.NewReader(stdin))
	app.SetArgs(args)
	if err := app.Execute(); err != nil {
		t.Fatalf("%s %v: %s", cmd, args, err)
	}
	return out.String(), cmdError
}

func TestNormalizeCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"first.txt":  "hòa hoà\n",
		"second.txt": "hoà HOÀ\n",
		"vnnorm.yml": "normalizationRules: first.txt\n",
		"nfd.txt":    "ho\u0300a hoa\u0300\n",
	})

	for _, test := range []struct {
		name     string
		stdin    string
		args     []string
		expected string
	}{
		{"args", "", []string{"normalize", "--root", dir, "--rules", "first.txt", "con hòa bình", "thủy"},
			"con hoà bình\nthủy\n"},
		{"stdin", "hòa\nhòa bình\n", []string{"normalize", "--root", dir, "--rules", "first.txt"},
			"hoà\nhoà bình\n"},
		{"chained sources", "", []string{"normalize", "--root", dir, "--rules", "first.txt,second.txt", "hòa"},
			"HOÀ\n"},
		{"config", "", []string{"normalize", "--root", dir, "--config", "vnnorm.yml", "hòa"},
			"hoà\n"},
		{"builtin default", "", []string{"normalize", "--root", dir, "thủy hòa"},
			"thuỷ hoà\n"},
		{"decomposed rules", "", []string{"normalize", "--root", dir, "--rules", "nfd.txt", "hòa"},
			"hòa\n"},
		{"decomposed rules nfc", "", []string{"normalize", "--root", dir, "--rules", "nfd.txt", "--nfc", "hòa"},
			"hoà\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			out, err := run(t, test.stdin, test.args...)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if out != test.expected {
				t.Errorf("output == %#v, want %#v", out, test.expected)
			}
		})
	}
}

func TestNormalizeMissingRules(t *testing.T) {
	dir := writeFiles(t, map[string]string{})
	if _, err := run(t, "", "normalize", "--root", dir, "--rules", "absent.txt", "hòa"); err == nil {
		t.Errorf("normalize with a missing rule source succeeded")
	}
}

func TestRulesCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{"r.txt": "thủy thuỷ\nhòa hoà\n"})
	out, err := run(t, "", "rules", "--root", dir, "--rules", "r.txt")
	if err != nil {
		t.Fatal(err)
	}
	expected := "# r.txt (2 rules)\nhòa\thoà\nthủy\tthuỷ\n"
	if out != expected {
		t.Errorf("rules output == %#v, want %#v", out, expected)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"good.txt": "a b\n",
		"bad.txt":  "a b\nc d e\nf g\n",
	})

	out, err := run(t, "", "check", "--root", dir, "good.txt")
	if err != nil {
		t.Errorf("check good.txt failed: %s", err)
	}
	if !strings.Contains(out, "good.txt: 1 rules, 0 malformed lines") {
		t.Errorf("check good.txt output == %#v", out)
	}

	out, err = run(t, "", "check", "--root", dir, "bad.txt")
	if err == nil {
		t.Errorf("check bad.txt succeeded")
	}
	if !strings.Contains(out, "bad.txt at line 2") || !strings.Contains(out, "bad.txt: 2 rules, 1 malformed lines") {
		t.Errorf("check bad.txt output == %#v", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil || out != cmd+" "+version+"\n" {
		t.Errorf("version == (%#v, %v)", out, err)
	}
}
