package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := New().WithIO(strings.NewReader(stdin), &stdout, &stderr)
	err := app.ExecuteWithArgs(context.Background(), args)
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "recipebot dev"))
}

func TestImportThenChat(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "recipes.csv")
	dbPath := filepath.Join(dir, "recipes.db")
	csv := "name##rating##ease##notes##type##prep_time##photo##cookbook##page##ingredients##slowcooker##link##last_made##make_it_next\n" +
		"Leek Soup##4##Super simple######30######12##leek, potato########\n" +
		"Mango Salad##5##Fairly easy######10########mango, lime########\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o600))

	out, err := run(t, "", "import", csvPath, "--sqlite", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "imported 2 recipes\n", out)

	out, err = run(t, "recipes with mango\nbye\n", "chat", "--sqlite", dbPath, "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Mango Salad")
	assert.Equal(t, 3, strings.Count(out, "bot:"))
}

func TestChatDemoEndsAtEOF(t *testing.T) {
	out, err := run(t, "something with leek\n\n", "chat", "--demo", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Leek and Potato Soup")
	assert.Equal(t, 2, strings.Count(out, "bot:"))
}

func TestChatRequiresCatalog(t *testing.T) {
	_, err := run(t, "", "chat")
	assert.Error(t, err)

	_, err = run(t, "", "import", "missing.csv")
	assert.Error(t, err)
}
