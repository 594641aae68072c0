package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/gridrisk/internal/application/dto"
	"github.com/turtacn/gridrisk/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/gridrisk/pkg/constants"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const factsDoc = `{
  "entities": [
    {"entity_id": "E-1", "attributes": [{"code_type": "PTY", "value": "HOS:L1", "created_at": "2020-01-01"}]},
    {"entity_id": "E-2", "relationships": [{"related_entity_id": "E-9", "type": "ASSOCIATE"}]}
  ]
}`

func TestScoreCommand(t *testing.T) {
	input := writeFile(t, "facts.json", factsDoc)

	out, err := run(t, "score", "--input", input, "--as-of", "2024-07-01", "--workers", "2")
	require.NoError(t, err)

	var resp dto.BatchScoreResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Requested)
	assert.Equal(t, 1, resp.Scored)
	assert.Equal(t, 1, resp.Unavailable)
	assert.False(t, resp.Incomplete)
	assert.Equal(t, "2024-07-01T00:00:00Z", resp.AsOf)
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	assert.Equal(t, "E-1", first.EntityID)
	assert.Equal(t, dto.StatusScored, first.Status)
	require.NotNil(t, first.FinalScore)
	assert.Equal(t, 9.55, *first.FinalScore)
	assert.Equal(t, string(constants.TierProbative), first.SeverityTier)
	require.NotNil(t, first.PEP)
	assert.Equal(t, []string{"HOS"}, first.PEP.Roles)

	second := resp.Results[1]
	assert.Equal(t, "E-2", second.EntityID)
	assert.Equal(t, dto.StatusUnavailable, second.Status)
	assert.Nil(t, second.FinalScore)
	assert.NotEmpty(t, second.Reason)
}

func TestScoreCommand_InvalidInput(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		_, err := run(t, "score", "--input", writeFile(t, "bad.json", "{"))
		assert.Error(t, err)
	})
	t.Run("no entities", func(t *testing.T) {
		_, err := run(t, "score", "--input", writeFile(t, "empty.json", `{"entities": []}`))
		assert.Error(t, err)
	})
	t.Run("bad as-of", func(t *testing.T) {
		_, err := run(t, "score", "--input", writeFile(t, "facts.json", factsDoc), "--as-of", "someday")
		assert.Error(t, err)
	})
	t.Run("missing flag", func(t *testing.T) {
		_, err := run(t, "score")
		assert.Error(t, err)
	})
}

func TestTablesDumpThenValidate(t *testing.T) {
	dumped, err := run(t, "tables", "dump")
	require.NoError(t, err)
	assert.Contains(t, dumped, "category_severity")

	path := writeFile(t, "tables.yaml", dumped)
	out, err := run(t, "tables", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: "+path)
}

func TestTablesValidate_Rejects(t *testing.T) {
	path := writeFile(t, "tables.yaml", "version: x\nnot_a_table: 1\n")
	_, err := run(t, "tables", "validate", path)
	assert.Error(t, err)
}

func TestPrintTierReport(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	scored := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	printTierReport(cmd, []postgres.TierSummary{
		{Tier: constants.TierCritical, Entities: 3, AvgScore: 91.256, MaxScore: 102.21, LastScored: scored},
		{Tier: constants.TierProbative, Entities: 7, AvgScore: 4.5, MaxScore: 9.56, LastScored: scored},
	})

	text := out.String()
	assert.Contains(t, text, "TIER")
	assert.Contains(t, text, "Critical")
	assert.Contains(t, text, "91.26")
	assert.Contains(t, text, "2024-07-01T12:00:00Z")
	assert.Regexp(t, `TOTAL\s+10`, text)
}
