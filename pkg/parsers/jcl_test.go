package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJCLParser_EndToEnd(t *testing.T) {
	src := []byte(
		"//CUSTJOB  JOB (ACCT),'CUSTOMER LOAD'\n" +
			"//STEP1    EXEC PGM=CUST001\n" +
			"//INFILE   DD DSN=CUSTOMER.INPUT.MASTER,DISP=SHR\n" +
			"//OUTFILE  DD DSN=CUSTMAST,DISP=(NEW,CATLG)\n" +
			"//STEP2    EXEC PGM=CUST002\n",
	)
	p := &JCLParser{}
	require.True(t, p.Validate("custjob.jcl", src))

	doc, err := p.Parse(context.Background(), "custjob.jcl", src)
	require.NoError(t, err)
	require.Equal(t, "CUSTJOB", doc.Document.Name)
	require.Len(t, doc.Components, 2)
	require.Len(t, doc.DataSources, 2)

	var precedes, reads, writes, calls int
	for _, d := range doc.Dependencies {
		switch string(d.Kind) {
		case "PRECEDES":
			precedes++
		case "READS_FROM":
			reads++
		case "WRITES_TO":
			writes++
		case "CALLS":
			calls++
		}
	}
	require.Equal(t, 1, precedes)
	require.Equal(t, 1, reads)
	require.Equal(t, 1, writes)
	require.Equal(t, 2, calls)
}

func TestJCLParser_MissingJobCardIsMalformed(t *testing.T) {
	p := &JCLParser{}
	_, err := p.Parse(context.Background(), "x.jcl", []byte("//STEP1 EXEC PGM=FOO\n"))
	require.Error(t, err)
}
