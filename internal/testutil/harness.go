package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/flakego/internal/ctxlog"
	"github.com/vk/flakego/internal/evaluator"
	"github.com/vk/flakego/internal/hcl"
	"github.com/vk/flakego/internal/pkgset"
	"github.com/vk/flakego/internal/resolver"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// EvalOptions configures a harness evaluation.
type EvalOptions struct {
	// System the flake is evaluated for; defaults to "x86_64-linux" so
	// tests behave the same on every development machine.
	System pkgset.SystemID

	// Fixtures maps input names to in-memory source trees, served to the
	// manifest under mem:<name> URLs.
	Fixtures map[string]map[string]string
}

// EvalResult holds the outcomes of an integration evaluation.
type EvalResult struct {
	LogOutput string
	Err       error
	Flake     *evaluator.Flake
}

// EvaluateFlake provides a standardized harness for evaluating a manifest
// tree end to end: the files are written to a temporary directory, inputs
// resolve against the in-memory fixtures (mem:) and the manifest directory
// (path:), and flake.hcl is evaluated for the configured system.
func EvaluateFlake(t *testing.T, files map[string]string, opts EvalOptions) *EvalResult {
	t.Helper()

	if opts.System == "" {
		opts.System = "x86_64-linux"
	}

	// 1. Write all manifest files to a temporary directory. Relative paths
	//    (e.g. "pkgs/hello.pkg.hcl") create the subdirectory structure.
	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	// 2. Capture logs from every stage on one buffer.
	logBuffer := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	// 3. Wire the fetcher stack: fixtures over mem:, local trees over path:.
	store := resolver.NewMemStore()
	for name, tree := range opts.Fixtures {
		require.NoError(t, store.Add(name, tree))
	}
	registry := resolver.NewRegistry()
	registry.Register(resolver.SchemeMem, store)
	registry.Register(resolver.SchemePath, resolver.NewPathFetcher(tmpDir))
	t.Cleanup(func() { _ = registry.Close() })

	result := &EvalResult{}
	defer func() { result.LogOutput = logBuffer.String() }()

	m, err := hcl.NewLoader().Load(ctx, tmpDir)
	if err != nil {
		result.Err = err
		return result
	}

	inputs, err := resolver.ResolveAll(ctx, registry, m.Inputs)
	if err != nil {
		result.Err = err
		return result
	}

	flake, err := evaluator.Evaluate(ctx, m, opts.System, inputs)
	if err != nil {
		result.Err = err
		return result
	}

	result.Flake = flake
	return result
}
