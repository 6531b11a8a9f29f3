// pkg/registry/registry_test.go
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(id string) Activity {
	return Activity{
		ID:          id,
		DisplayName: id,
		Category:    "provider",
		TaskType:    id,
		Timeout:     "5s",
	}
}

func TestLoadRegistry(t *testing.T) {
	reg := ActivityRegistry{
		Version:    "1.0.0",
		Activities: []Activity{activity("fetch-weather")},
	}
	data, err := json.Marshal(reg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", loaded.Version)

	a, ok := loaded.Find("fetch-weather")
	require.True(t, ok)
	assert.Equal(t, "5s", a.Timeout)

	_, ok = loaded.Find("send-email")
	assert.False(t, ok)
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestValidate(t *testing.T) {
	served := []string{"fetch-weather", "fetch-news-feed"}

	tests := []struct {
		name       string
		activities []Activity
		wantErr    string
	}{
		{
			name:       "matches served task types",
			activities: []Activity{activity("fetch-weather"), activity("fetch-news-feed")},
		},
		{
			name:    "empty",
			wantErr: "registry contains no activities",
		},
		{
			name:       "duplicate id",
			activities: []Activity{activity("fetch-weather"), activity("fetch-weather")},
			wantErr:    "duplicate activity ID: fetch-weather",
		},
		{
			name: "missing category",
			activities: []Activity{
				{ID: "fetch-weather", DisplayName: "Weather", TaskType: "fetch-weather"},
			},
			wantErr: "activity fetch-weather missing required field: Category",
		},
		{
			name: "bad timeout",
			activities: []Activity{
				func() Activity { a := activity("fetch-weather"); a.Timeout = "soon"; return a }(),
			},
			wantErr: `activity fetch-weather has invalid timeout "soon"`,
		},
		{
			name:       "served but not registered",
			activities: []Activity{activity("fetch-weather")},
			wantErr:    "task type fetch-news-feed is served but not registered",
		},
		{
			name:       "registered but not served",
			activities: []Activity{activity("fetch-weather"), activity("fetch-news-feed"), activity("send-email")},
			wantErr:    "task type send-email is registered but no worker serves it",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: tt.activities}
			err := reg.Validate(served)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
