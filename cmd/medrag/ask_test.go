package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAskCmd(t *testing.T) {
	setupProject(t)
	a := stubApp("Aspirin.")

	if _, err := execute(t, NewRootCmd("dev", a), "index", "build"); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := execute(t, NewRootCmd("dev", a), "ask", "What", "reduces", "fever?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if strings.TrimSpace(out) != "Aspirin." {
		t.Errorf("answer = %q, want %q", out, "Aspirin.")
	}
}

func TestAskCmdJSON(t *testing.T) {
	setupProject(t)
	a := stubApp("Aspirin.")

	if _, err := execute(t, NewRootCmd("dev", a), "index", "build"); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := execute(t, NewRootCmd("dev", a), "ask", "--json", "-k", "2", "What reduces fever?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got["question"] != "What reduces fever?" || got["answer"] != "Aspirin." {
		t.Errorf("got %v", got)
	}
}

func TestAskCmdBlankQuestion(t *testing.T) {
	setupProject(t)

	if _, err := execute(t, NewRootCmd("dev", stubApp("x")), "ask", "   "); err == nil {
		t.Error("expected error for blank question")
	}
}

func TestAskCmdWithoutIndex(t *testing.T) {
	setupProject(t)

	_, err := execute(t, NewRootCmd("dev", stubApp("x")), "ask", "What is fever?")
	if err == nil {
		t.Fatal("expected error without an index")
	}
	if !strings.Contains(err.Error(), "index") {
		t.Errorf("error should name the failed component: %v", err)
	}
}
