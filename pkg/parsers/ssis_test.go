package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDTSX = `<?xml version="1.0"?>
<Executable ObjectName="LoadCustomers" DTSID="{PKG-1}">
  <ConnectionManagers>
    <ConnectionManager ObjectName="SalesDB" DTSID="{CM-1}" CreationName="OLEDB">
      <ObjectData>
        <ConnectionManager ConnectionString="Server=SALESDB;Database=Sales"/>
      </ObjectData>
    </ConnectionManager>
  </ConnectionManagers>
  <Variables>
    <Variable ObjectName="BatchSize" DataType="3">
      <VariableValue>1000</VariableValue>
    </Variable>
  </Variables>
  <Executables>
    <Executable ObjectName="ExtractCustomers" DTSID="{EX-1}" ExecutableType="Microsoft.ExecuteSQLTask">
      <ObjectData>
        <SqlTaskData SqlStatementSource="SELECT * FROM Customer"/>
      </ObjectData>
    </Executable>
    <Executable ObjectName="MergeToWarehouse" DTSID="{EX-2}" ExecutableType="Microsoft.ExecuteSQLTask">
      <ObjectData>
        <SqlTaskData SqlStatementSource="UPDATE Customer SET Merged = 1"/>
      </ObjectData>
    </Executable>
  </Executables>
  <PrecedenceConstraints>
    <PrecedenceConstraint From="{EX-1}" To="{EX-2}"/>
  </PrecedenceConstraints>
</Executable>`

func TestSSISParser_EndToEnd(t *testing.T) {
	data := []byte(sampleDTSX)
	p := &SSISParser{}
	require.True(t, p.Validate("load.dtsx", data))

	doc, err := p.Parse(context.Background(), "load.dtsx", data)
	require.NoError(t, err)
	require.Equal(t, "LoadCustomers", doc.Document.Name)
	require.Len(t, doc.Components, 2)
	require.Len(t, doc.DataSources, 1)
	require.Len(t, doc.Parameters, 1)

	var precedes, reads, writes int
	for _, d := range doc.Dependencies {
		switch string(d.Kind) {
		case "PRECEDES":
			precedes++
		case "READS_FROM":
			reads++
		case "WRITES_TO":
			writes++
		}
	}
	require.Equal(t, 1, precedes)
	require.Equal(t, 1, reads)
	require.Equal(t, 1, writes)
}

func TestSSISParser_MalformedXML(t *testing.T) {
	p := &SSISParser{}
	_, err := p.Parse(context.Background(), "x.dtsx", []byte("<not valid"))
	require.Error(t, err)
}
