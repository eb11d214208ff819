package main

import "testing"

func TestRunCompletion_Bash(t *testing.T) {
	if err := runCompletion([]string{"bash"}); err != nil {
		t.Fatalf("runCompletion(bash): %v", err)
	}
}

func TestRunCompletion_UnknownShell(t *testing.T) {
	if err := runCompletion([]string{"zsh"}); err == nil {
		t.Fatal("expected error for unsupported shell")
	}
}

func TestRunCompletion_NoArgs(t *testing.T) {
	if err := runCompletion(nil); err == nil {
		t.Fatal("expected error when no shell argument is given")
	}
}
