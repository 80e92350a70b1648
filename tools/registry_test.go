package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func echoTool(_ context.Context, args json.RawMessage) (json.RawMessage, error) {
	return args, nil
}

func TestDefaultRegistry_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		toolName   string
		metadata   ToolMetadata
		wantErr    bool
		errSubstr  string
		wantFilled ToolMetadata
	}{
		{
			name:     "empty schema name is filled from register name",
			toolName: "echo",
			metadata: ToolMetadata{Timeout: 5 * time.Second},
			wantFilled: ToolMetadata{
				Schema:  ToolSchema{Name: "echo"},
				Timeout: 5 * time.Second,
			},
		},
		{
			name:     "zero timeout gets the 30s default",
			toolName: "echo",
			metadata: ToolMetadata{Schema: ToolSchema{Name: "echo"}},
			wantFilled: ToolMetadata{
				Schema:  ToolSchema{Name: "echo"},
				Timeout: 30 * time.Second,
			},
		},
		{
			name:      "schema name mismatch is rejected",
			toolName:  "echo",
			metadata:  ToolMetadata{Schema: ToolSchema{Name: "other"}},
			wantErr:   true,
			errSubstr: "name mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			registry := NewDefaultRegistry(zap.NewNop())

			err := registry.Register(tt.toolName, echoTool, tt.metadata)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				assert.False(t, registry.Has(tt.toolName))
				return
			}

			require.NoError(t, err)
			fn, meta, err := registry.Get(tt.toolName)
			require.NoError(t, err)
			assert.NotNil(t, fn)
			assert.Equal(t, tt.wantFilled.Schema.Name, meta.Schema.Name)
			assert.Equal(t, tt.wantFilled.Timeout, meta.Timeout)
		})
	}
}

func TestDefaultRegistry_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())
	require.NoError(t, registry.Register("echo", echoTool, ToolMetadata{}))

	err := registry.Register("echo", echoTool, ToolMetadata{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDefaultRegistry_Unregister(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())
	require.NoError(t, registry.Register("echo", echoTool, ToolMetadata{}))
	require.True(t, registry.Has("echo"))

	require.NoError(t, registry.Unregister("echo"))
	assert.False(t, registry.Has("echo"))

	err := registry.Unregister("echo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDefaultRegistry_GetMissing(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())

	fn, _, err := registry.Get("nonexistent")
	require.Error(t, err)
	assert.Nil(t, fn)
	assert.Contains(t, err.Error(), "not found")
}

func TestDefaultRegistry_List(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())
	require.NoError(t, registry.Register("alpha", echoTool, ToolMetadata{}))
	require.NoError(t, registry.Register("beta", echoTool, ToolMetadata{}))

	schemas := registry.List()
	require.Len(t, schemas, 2)

	names := map[string]bool{}
	for _, s := range schemas {
		names[s.Name] = true
	}
	assert.True(t, names["alpha"])
	assert.True(t, names["beta"])
}

func TestDefaultExecutor_ExecuteOne_Success(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())
	require.NoError(t, registry.Register("echo", echoTool, ToolMetadata{Timeout: 5 * time.Second}))

	executor := NewDefaultExecutor(registry, zap.NewNop())
	result := executor.ExecuteOne(context.Background(), ToolCall{
		ID:        "call_1",
		Name:      "echo",
		Arguments: json.RawMessage(`{"msg":"hello"}`),
	})

	assert.Equal(t, "call_1", result.ToolCallID)
	assert.Equal(t, "echo", result.Name)
	assert.Empty(t, result.Error)
	assert.JSONEq(t, `{"msg":"hello"}`, string(result.Result))
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestDefaultExecutor_ExecuteOne_Failures(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())
	require.NoError(t, registry.Register("echo", echoTool, ToolMetadata{Timeout: 5 * time.Second}))
	require.NoError(t, registry.Register("boom", func(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
		return nil, fmt.Errorf("upstream exploded")
	}, ToolMetadata{Timeout: 5 * time.Second}))

	executor := NewDefaultExecutor(registry, zap.NewNop())

	tests := []struct {
		name      string
		call      ToolCall
		errSubstr string
	}{
		{
			name:      "unknown tool",
			call:      ToolCall{ID: "c1", Name: "nonexistent"},
			errSubstr: "tool not found",
		},
		{
			name:      "malformed arguments",
			call:      ToolCall{ID: "c2", Name: "echo", Arguments: json.RawMessage(`{broken`)},
			errSubstr: "invalid arguments",
		},
		{
			name:      "tool returns error",
			call:      ToolCall{ID: "c3", Name: "boom", Arguments: json.RawMessage(`{}`)},
			errSubstr: "upstream exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := executor.ExecuteOne(context.Background(), tt.call)
			assert.Contains(t, result.Error, tt.errSubstr)
			assert.Nil(t, result.Result)
		})
	}
}

func TestDefaultExecutor_ExecuteOne_Timeout(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())
	slowFunc := func(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return json.RawMessage(`{"done":true}`), nil
		}
	}
	require.NoError(t, registry.Register("slow", slowFunc, ToolMetadata{Timeout: 50 * time.Millisecond}))

	executor := NewDefaultExecutor(registry, zap.NewNop())
	result := executor.ExecuteOne(context.Background(), ToolCall{ID: "c1", Name: "slow"})

	assert.Contains(t, result.Error, "execution timeout")
}

func TestDefaultExecutor_Execute_PreservesCallOrder(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(zap.NewNop())
	var invocations atomic.Int32
	require.NoError(t, registry.Register("count", func(_ context.Context, args json.RawMessage) (json.RawMessage, error) {
		invocations.Add(1)
		return args, nil
	}, ToolMetadata{Timeout: 5 * time.Second}))

	executor := NewDefaultExecutor(registry, zap.NewNop())
	calls := []ToolCall{
		{ID: "c1", Name: "count", Arguments: json.RawMessage(`{"n":1}`)},
		{ID: "c2", Name: "nonexistent"},
		{ID: "c3", Name: "count", Arguments: json.RawMessage(`{"n":3}`)},
	}

	results := executor.Execute(context.Background(), calls)

	require.Len(t, results, 3)
	assert.Equal(t, "c1", results[0].ToolCallID)
	assert.Equal(t, "c2", results[1].ToolCallID)
	assert.Equal(t, "c3", results[2].ToolCallID)
	assert.Empty(t, results[0].Error)
	assert.Contains(t, results[1].Error, "not found")
	assert.Empty(t, results[2].Error)
	assert.Equal(t, int32(2), invocations.Load())
}
