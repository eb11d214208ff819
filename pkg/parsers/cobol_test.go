package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func col(line string) string {
	// Pad a logical COBOL statement into columns 7-72, matching fixed-form
	// source: six leading spaces fill the sequence-number area (columns 1-6).
	return "      " + line
}

func buildCOBOL(lines ...string) []byte {
	out := ""
	for _, l := range lines {
		out += col(l) + "\n"
	}
	return []byte(out)
}

func TestCOBOLParser_EndToEnd(t *testing.T) {
	src := buildCOBOL(
		"IDENTIFICATION DIVISION.",
		"PROGRAM-ID. CUST001.",
		"ENVIRONMENT DIVISION.",
		"INPUT-OUTPUT SECTION.",
		"FILE-CONTROL.",
		"    SELECT CUSTOMER-FILE ASSIGN TO CUSTIN.",
		"    SELECT CUSTMAST ASSIGN TO CUSTOUT.",
		"DATA DIVISION.",
		"WORKING-STORAGE SECTION.",
		"01 CUSTOMER-RECORD.",
		"PROCEDURE DIVISION.",
		"MAIN-PARA.",
		"    READ CUSTOMER-FILE.",
		"    WRITE CUSTMAST.",
		"    PERFORM VALIDATE-PARA.",
		"VALIDATE-PARA.",
		"    CALL 'SUBVALID'.",
	)

	p := &COBOLParser{}
	require.True(t, p.Validate("cust001.cbl", src))

	doc, err := p.Parse(context.Background(), "cust001.cbl", src)
	require.NoError(t, err)
	require.Equal(t, "CUST001", doc.Document.Name)
	require.Len(t, doc.Components, 2)
	require.Len(t, doc.DataSources, 2)

	var hasCall, hasPerform, hasRead, hasWrite bool
	for _, d := range doc.Dependencies {
		switch {
		case string(d.Kind) == "CALLS" && d.ToID == "deferred:program:SUBVALID":
			hasCall = true
		case string(d.Kind) == "CALLS":
			hasPerform = true
		case string(d.Kind) == "READS_FROM":
			hasRead = true
		case string(d.Kind) == "WRITES_TO":
			hasWrite = true
		}
	}
	require.True(t, hasCall, "expected deferred CALL reference")
	require.True(t, hasPerform, "expected intra-document PERFORM call")
	require.True(t, hasRead)
	require.True(t, hasWrite)
}

func TestCOBOLParser_MissingProgramIDIsMalformed(t *testing.T) {
	p := &COBOLParser{}
	_, err := p.Parse(context.Background(), "x.cbl", []byte(col("DATA DIVISION.\n")))
	require.Error(t, err)
}
