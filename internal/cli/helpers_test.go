package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snaphist/internal/config"
)

const objectsCSV = `id,plant,scope,type,etype,eid,created,terminated
1,P1,S1,pump,equipment,E-1,2020-01-01 00:00:00,infinity
2,P1,S1,valve,equipment,E-2,2020-01-01 00:00:00,2021-01-01 00:00:00
`

// Attribute 13 belongs to no object.
const attributesCSV = `id,objid,def,value,created,terminated
10,1,color,red,2020-01-01 00:00:00,2020-06-01 00:00:00
11,1,color,blue,2020-06-01 00:00:00,infinity
12,2,size,large,2020-03-01 00:00:00,infinity
13,99,color,green,2020-01-01 00:00:00,infinity
`

const expectedCSV = `id,plant,scope,type,etype,eid,created,terminated,color,size
1,P1,S1,pump,equipment,E-1,2020-01-01 00:00:00,2020-06-01 00:00:00,red,
1,P1,S1,pump,equipment,E-1,2020-06-01 00:00:00,infinity,blue,
2,P1,S1,valve,equipment,E-2,2020-01-01 00:00:00,2020-03-01 00:00:00,,
2,P1,S1,valve,equipment,E-2,2020-03-01 00:00:00,2021-01-01 00:00:00,,large
2,P1,S1,valve,equipment,E-2,2021-01-01 00:00:00,2021-01-01 00:00:00,,large
`

// writeInput writes the fixture CSV files into a temp dir.
func writeInput(t *testing.T) (dir, objects, attributes string) {
	t.Helper()
	dir = t.TempDir()
	objects = filepath.Join(dir, "obj.csv")
	attributes = filepath.Join(dir, "attr.csv")
	require.NoError(t, os.WriteFile(objects, []byte(objectsCSV), 0644))
	require.NoError(t, os.WriteFile(attributes, []byte(attributesCSV), 0644))
	return dir, objects, attributes
}

// testRootOptions returns options that bypass environment loading.
func testRootOptions(format string) *RootOptions {
	return &RootOptions{
		Format: format,
		Config: &config.Config{
			ObjectsTable:    "obj",
			AttributesTable: "attr",
			OpenEndedLabel:  "infinity",
			Workers:         1,
		},
	}
}

// execute runs cmd with args and captures stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeResponse unmarshals a JSON CLIResponse, decoding Data into data.
func decodeResponse(t *testing.T, stdout string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &raw))
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Data: data, Error: raw.Error}
}
