package roster

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

const bartCSV = `Player,Team,Role,YYR
Jane Doe,State,Combo G,Jr
 jane doe ,Other,C,Sr
Sam Hill,Tech,Stretch 4,So
Pat Big,U,C,
,U,PG,Fr
`

func TestRead_FirstRowWins(t *testing.T) {
	table, err := Read("bart", strings.NewReader(bartCSV), Columns{Name: "Player", Role: "Role", Year: "YYR"})
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	e, ok := table.Get("jane doe")
	require.True(t, ok)
	assert.Equal(t, "Combo G", e.Role)
	assert.Equal(t, "Jr", e.Year)

	_, ok = table.Keys()["pat big"]
	assert.True(t, ok)
}

func TestRead_Lookups(t *testing.T) {
	table, err := Read("bart", strings.NewReader(bartCSV), Columns{Name: "player", Role: "role", Year: "yyr"})
	require.NoError(t, err)

	raw := table.RoleLookup(false)
	v, ok := raw.Lookup("sam hill")
	require.True(t, ok)
	assert.Equal(t, "Stretch 4", v)
	assert.Equal(t, "bart", raw.Name())

	std := table.RoleLookup(true)
	v, ok = std.Lookup("sam hill")
	require.True(t, ok)
	assert.Equal(t, "F", v)

	v, ok = std.Lookup("jane doe")
	require.True(t, ok)
	assert.Equal(t, "G", v)

	_, ok = table.YearLookup().Lookup("pat big")
	assert.False(t, ok)

	pos, ok := table.Position("pat big")
	require.True(t, ok)
	assert.Equal(t, "C", pos)
}

func TestRead_MissingNameColumn(t *testing.T) {
	_, err := Read("bad", strings.NewReader("A,B\n1,2\n"), Columns{Name: "Player"})
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestOpen_Heights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combine.csv")
	require.NoError(t, os.WriteFile(path, []byte("PLAYER_NAME,HEIGHT_WO_SHOES\nJane Doe,6-5\nSam Hill,80.5\nPat Big,\n"), 0o644))

	table, err := Open("combine", path, Columns{Name: "PLAYER_NAME", Height: "HEIGHT_WO_SHOES"})
	require.NoError(t, err)

	h, ok := table.Height(metrics.NewPlayerKey("JANE DOE"))
	require.True(t, ok)
	assert.Equal(t, 77.0, h)

	h, ok = table.Height("sam hill")
	require.True(t, ok)
	assert.Equal(t, 80.5, h)

	_, ok = table.Height("pat big")
	assert.False(t, ok)

	_, ok = table.Height("nobody")
	assert.False(t, ok)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("nba_players", filepath.Join(t.TempDir(), "missing.csv"), Columns{Name: "Player"})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
