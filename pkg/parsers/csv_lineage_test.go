package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traceai/engine/pkg/ir"
)

func TestCSVLineageParser_SourceTarget(t *testing.T) {
	data := []byte("source,target\nCUSTOMER,CUSTOMER_WAREHOUSE\nORDERS,ORDERS_WAREHOUSE\n")
	p := &CSVLineageParser{}
	require.True(t, p.Validate("lineage.csv", data))

	doc, err := p.Parse(context.Background(), "lineage.csv", data)
	require.NoError(t, err)
	require.Equal(t, ir.KindCSVLineage, doc.Document.Kind)
	require.Len(t, doc.DataEntities, 4)
	require.Len(t, doc.Dependencies, 2)
	require.Equal(t, ir.DepWritesTo, doc.Dependencies[0].Kind)
}

func TestCSVLineageParser_SemicolonDelimited(t *testing.T) {
	data := []byte("source_table;target_table;transformation_logic\nCUSTOMER;DIM_CUSTOMER;UPPER(name)\n")
	p := &CSVLineageParser{}
	doc, err := p.Parse(context.Background(), "lineage.csv", data)
	require.NoError(t, err)
	require.Len(t, doc.Dependencies, 1)
	require.Equal(t, "UPPER(name)", doc.Dependencies[0].Properties["transformation_logic"])
}

func TestCSVLineageParser_UnrecognizedHeaderIsMalformed(t *testing.T) {
	data := []byte("foo,bar\n1,2\n")
	p := &CSVLineageParser{}
	_, err := p.Parse(context.Background(), "x.csv", data)
	require.Error(t, err)
}

func TestCSVLineageParser_Deterministic(t *testing.T) {
	data := []byte("source,target\nA,B\n")
	p := &CSVLineageParser{}
	d1, err := p.Parse(context.Background(), "x.csv", data)
	require.NoError(t, err)
	d2, err := p.Parse(context.Background(), "x.csv", data)
	require.NoError(t, err)
	require.Equal(t, d1.Document.ID, d2.Document.ID)
	require.Equal(t, d1.Dependencies, d2.Dependencies)
}
