package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONConfigParser_Components(t *testing.T) {
	data := []byte(`{
		"parameters": {"batch_size": 100},
		"components": [
			{"name": "extract", "depends_on": []},
			{"name": "load", "depends_on": ["extract"]}
		]
	}`)
	p := &JSONConfigParser{}
	require.True(t, p.Validate("cfg.json", data))

	doc, err := p.Parse(context.Background(), "cfg.json", data)
	require.NoError(t, err)
	require.Len(t, doc.Components, 2)
	require.Len(t, doc.Parameters, 1)

	var precedes int
	for _, d := range doc.Dependencies {
		if string(d.Kind) == "PRECEDES" {
			precedes++
		}
	}
	require.Equal(t, 1, precedes)
}

func TestJSONConfigParser_SourceTargetShape(t *testing.T) {
	data := []byte(`{"link": {"source": "CUSTOMER", "target": "CUSTOMER_DW"}}`)
	p := &JSONConfigParser{}
	doc, err := p.Parse(context.Background(), "cfg.json", data)
	require.NoError(t, err)
	require.Len(t, doc.DataEntities, 2)
}

func TestJSONConfigParser_InvalidJSON(t *testing.T) {
	p := &JSONConfigParser{}
	_, err := p.Parse(context.Background(), "cfg.json", []byte("{not json"))
	require.Error(t, err)
}
