package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/leoflow/leonardo"
	"github.com/BaSui01/leoflow/testutil"
)

func newImageTool(fake *testutil.FakeLeonardo, pollTimeout time.Duration) (ToolFunc, ToolMetadata) {
	cfg := ImageGenerationConfig{
		APIKey:      "test-key",
		BaseURL:     fake.Server.URL,
		PollTimeout: pollTimeout,
	}
	return NewImageGenerationTool(cfg, zap.NewNop())
}

func TestNewImageGenerationTool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      ImageGenerationConfig
		wantTimeout time.Duration
	}{
		{
			name:        "default config",
			config:      DefaultImageGenerationConfig(),
			wantTimeout: DefaultPollTimeout + leonardo.DefaultTimeout,
		},
		{
			name:        "custom poll timeout",
			config:      ImageGenerationConfig{PollTimeout: 10 * time.Second},
			wantTimeout: 10*time.Second + leonardo.DefaultTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fn, meta := NewImageGenerationTool(tt.config, nil)

			assert.NotNil(t, fn)
			assert.Equal(t, ImageGenerationToolName, meta.Schema.Name)
			assert.Equal(t, tt.wantTimeout, meta.Timeout)
			assert.NotEmpty(t, meta.Description)
			assert.NotEmpty(t, meta.Schema.Description)
			assert.NotEmpty(t, meta.Schema.Parameters)
		})
	}
}

func TestImageGenerationTool_ToolFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		script          func(f *testutil.FakeLeonardo)
		args            json.RawMessage
		wantSubmitCalls int
		errSubstr       string
		checkResp       func(t *testing.T, r imageGenResult)
	}{
		{
			name: "successful generation returns urls",
			script: func(f *testutil.FakeLeonardo) {
				f.ScriptSubmit(testutil.SubmitOK("gen-42"))
				f.ScriptStatus(testutil.StatusComplete("https://cdn.example/1.png", "https://cdn.example/2.png"))
			},
			args:            json.RawMessage(`{"prompt":"a lighthouse at dusk","num_images":2}`),
			wantSubmitCalls: 1,
			checkResp: func(t *testing.T, r imageGenResult) {
				assert.Equal(t, "gen-42", r.GenerationID)
				assert.Equal(t, []string{"https://cdn.example/1.png", "https://cdn.example/2.png"}, r.ImageURLs)
				assert.Equal(t, 2, r.Count)
			},
		},
		{
			name: "submission failure is reported in the result",
			script: func(f *testutil.FakeLeonardo) {
				f.ScriptSubmit(testutil.ScriptedResponse{Status: 500, Body: `{"error":"internal"}`})
			},
			args:            json.RawMessage(`{"prompt":"a lighthouse"}`),
			wantSubmitCalls: 1,
			errSubstr:       "500",
		},
		{
			name: "failed generation is reported in the result",
			script: func(f *testutil.FakeLeonardo) {
				f.ScriptSubmit(testutil.SubmitOK("gen-43"))
				f.ScriptStatus(testutil.StatusFailed())
			},
			args:            json.RawMessage(`{"prompt":"a lighthouse"}`),
			wantSubmitCalls: 1,
			errSubstr:       "failed",
		},
		{
			name:            "malformed arguments are reported in the result",
			script:          func(f *testutil.FakeLeonardo) {},
			args:            json.RawMessage(`{broken`),
			wantSubmitCalls: 0,
			errSubstr:       "invalid arguments",
		},
		{
			name:            "blank prompt is reported in the result",
			script:          func(f *testutil.FakeLeonardo) {},
			args:            json.RawMessage(`{"prompt":"   "}`),
			wantSubmitCalls: 0,
			errSubstr:       "prompt is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fake := testutil.NewFakeLeonardo(t)
			tt.script(fake)
			fn, _ := newImageTool(fake, 10*time.Second)

			resp, err := fn(context.Background(), tt.args)

			// Workflow failures never surface as Go errors; they live in
			// the result object so the caller can relay them.
			require.NoError(t, err)
			require.NotNil(t, resp)

			var r imageGenResult
			require.NoError(t, json.Unmarshal(resp, &r))

			if tt.errSubstr != "" {
				assert.Contains(t, r.Error, tt.errSubstr)
				assert.NotNil(t, r.ImageURLs)
				assert.Empty(t, r.ImageURLs)
			} else {
				assert.Empty(t, r.Error)
				if tt.checkResp != nil {
					tt.checkResp(t, r)
				}
			}
			assert.Equal(t, tt.wantSubmitCalls, fake.SubmitCalls())
		})
	}
}

func TestImageGenerationTool_FailureSerializesEmptyArray(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeLeonardo(t)
	fake.ScriptSubmit(testutil.ScriptedResponse{Status: 503, Body: `{"error":"overloaded"}`})
	fn, _ := newImageTool(fake, 10*time.Second)

	resp, err := fn(context.Background(), json.RawMessage(`{"prompt":"anything"}`))
	require.NoError(t, err)

	// Consumers index into imageUrls unconditionally, so it must be an
	// empty array rather than null.
	assert.Contains(t, string(resp), `"imageUrls":[]`)
}

func TestImageGenerationTool_ForwardsArguments(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeLeonardo(t)
	fake.ScriptSubmit(testutil.SubmitOK("gen-44"))
	fake.ScriptStatus(testutil.StatusComplete("https://cdn.example/a.png"))
	fn, _ := newImageTool(fake, 10*time.Second)

	args := json.RawMessage(`{"prompt":"castle","num_images":3,"width":512,"height":768,"preset_style":"CINEMATIC"}`)
	_, err := fn(context.Background(), args)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(fake.LastSubmitBody(), &body))
	assert.Equal(t, "castle", body["prompt"])
	assert.Equal(t, float64(3), body["num_images"])
	assert.Equal(t, float64(512), body["width"])
	assert.Equal(t, float64(768), body["height"])
	assert.Equal(t, "CINEMATIC", body["presetStyle"])
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")

	assert.Equal(t, "explicit-key", resolveAPIKey("explicit-key"))
	assert.Equal(t, "env-key", resolveAPIKey(""))

	t.Setenv(EnvAPIKey, "")
	assert.Equal(t, "", resolveAPIKey(""))
}

func TestRegisterImageGenerationTool(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())
	cfg := ImageGenerationConfig{APIKey: "test-key", PollTimeout: 10 * time.Second}

	require.NoError(t, RegisterImageGenerationTool(registry, cfg, zap.NewNop()))
	assert.True(t, registry.Has(ImageGenerationToolName))

	fn, meta, err := registry.Get(ImageGenerationToolName)
	require.NoError(t, err)
	assert.NotNil(t, fn)
	assert.Equal(t, ImageGenerationToolName, meta.Schema.Name)

	// Registering again should fail (duplicate)
	err = RegisterImageGenerationTool(registry, cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRegisterImageGenerationTool_SkipsWithoutCredential(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	registry := NewDefaultRegistry(zap.NewNop())
	err := RegisterImageGenerationTool(registry, ImageGenerationConfig{}, zap.NewNop())

	require.NoError(t, err)
	assert.False(t, registry.Has(ImageGenerationToolName))
}

func TestRegisterImageGenerationTool_EnvCredential(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")

	registry := NewDefaultRegistry(zap.NewNop())
	err := RegisterImageGenerationTool(registry, ImageGenerationConfig{}, zap.NewNop())

	require.NoError(t, err)
	assert.True(t, registry.Has(ImageGenerationToolName))
}
