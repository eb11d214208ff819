package main

import (
	"fmt"

	apperrors "github.com/traceai/engine/internal/errors"
)

// bashCompletionScript is the bash completion script for traceai,
// adapted from the teacher's bashCompletionTemplate (cmd/cie/completion.go).
const bashCompletionScript = `#!/bin/bash
# Bash completion for traceai.
# Installation:
#   source <(traceai completion bash)

_traceai_completion() {
    local cur commands
    commands="init ingest stats trace impact search query reset completion"
    cur="${COMP_WORDS[COMP_CWORD]}"

    if [[ ${cur} == -* ]]; then
        COMPREPLY=( $(compgen -W "--project-id --persist-dir --json --quiet --no-color --version" -- ${cur}) )
        return 0
    fi
    if [ ${COMP_CWORD} -eq 1 ]; then
        COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        return 0
    fi
}

complete -F _traceai_completion traceai
`

func runCompletion(args []string) error {
	if len(args) != 1 || args[0] != "bash" {
		return apperrors.New(apperrors.InvalidArgument, "completion requires a shell argument").
			WithFix("traceai completion bash")
	}
	fmt.Print(bashCompletionScript)
	return nil
}
