package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/distillyzer/dz-cli/internal/adapters/driven/config/file"
	"github.com/distillyzer/dz-cli/internal/adapters/driven/storage/sqlite"
)

const keylessPage = `<html>
<head><title>Notes on Chunking</title></head>
<body>
<p>Chunking merges consecutive transcript segments up to a character budget so each stored span stays independently retrievable.</p>
<p>Flat text splits on paragraph boundaries instead, carrying no time offsets at all.</p>
</body>
</html>`

// wireServices with no API keys must still wire acquisition: search,
// channel listing and article or repo harvesting work without any
// embedding or synthesis provider.
func TestWireServices_NoAPIKeys(t *testing.T) {
	t.Setenv(configfile.EnvOpenAIKey, "")
	t.Setenv(configfile.EnvAnthropicKey, "")
	t.Setenv(configfile.EnvGitHubToken, "")

	settings = configfile.DefaultSettings()

	var err error
	store, err = sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
		settings = nil
		store = nil
		harvestService = nil
		queryService = nil
	})

	require.NoError(t, wireServices(context.Background()))
	require.NotNil(t, harvestService)
	assert.Nil(t, queryService)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(keylessPage))
	}))
	t.Cleanup(server.Close)

	result, err := harvestService.Harvest(context.Background(), server.URL+"/posts/chunking")
	require.NoError(t, err)
	assert.False(t, result.AlreadyExists)
	assert.Equal(t, 1, result.Items)
	assert.Greater(t, result.Chunks, 0)

	// Content is cataloged but stays unembedded without a provider.
	stats, err := harvestService.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Items)
	assert.Equal(t, 0, stats.Embedded)
}
