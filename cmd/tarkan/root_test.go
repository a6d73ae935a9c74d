package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing"
)

func TestTraceFlag(t *testing.T) {
	dir := t.TempDir()
	grmPath := filepath.Join(dir, "one.tarkan")
	err := os.WriteFile(grmPath, []byte(`start -> int: "1" { return 1 };`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stderr := os.Stderr
	os.Stderr = w
	log.SetOutput(w)
	defer func() {
		os.Stderr = stderr
		log.SetOutput(stderr)
		tracing.Select("tarkan.grammar").SetTraceLevel(tracing.LevelError)
	}()

	rootCmd.SetArgs([]string{"compile", "--trace", "Debug", grmPath, "-o", filepath.Join(dir, "one.json")})
	err = rootCmd.Execute()
	w.Close()
	out, rErr := io.ReadAll(r)
	if rErr != nil {
		t.Fatal(rErr)
	}
	if err != nil {
		t.Fatal(err)
	}

	if l := tracing.Select("tarkan.grammar").GetTraceLevel(); l != tracing.LevelDebug {
		t.Errorf("unexpected trace level: want: %v, got: %v", tracing.LevelDebug, l)
	}
	for _, s := range []string{"grammar one", "LR(1) automaton", "baked automaton"} {
		if !strings.Contains(string(out), s) {
			t.Errorf("a debug trace must contain %q:\n%v", s, string(out))
		}
	}
}
