package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestListSortedAndStripped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.yaml":    "",
		"a.yaml":    "",
		"notes.txt": "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755))

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestListMissingDirectory(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"pod-delete.yaml": ""})

	path, err := Find(dir, "pod-delete")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pod-delete.yaml"), path)

	_, err = Find(dir, "foo")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "foo.yaml not found")
}

func TestParseManifest(t *testing.T) {
	m, err := Parse([]byte(`
apiVersion: litmuschaos.io/v1alpha1
kind: ChaosEngine
metadata:
  name: engine1
  namespace: ns1
spec:
  appinfo:
    appns: ns1
    applabel: name=carts-db
    appkind: statefulset
  experiments:
    - name: pod-delete
`))
	require.NoError(t, err)

	assert.Equal(t, "engine1", m.EngineName())
	assert.Equal(t, "ns1", m.ResolveNamespace("UNUSED_ENV"))
	assert.Equal(t, "engine1-pod-delete", m.ResultName("pod-delete"))
	require.Len(t, m.Spec.Experiments, 1)
	assert.Equal(t, "pod-delete", m.Spec.Experiments[0].Name)
}

func TestParseManifestRequiresName(t *testing.T) {
	_, err := Parse([]byte("metadata:\n  namespace: ns1\n"))
	assert.ErrorIs(t, err, ErrInvalidManifest)

	_, err = Parse([]byte("metadata: [unterminated"))
	assert.ErrorIs(t, err, ErrInvalidManifest)

	_, err = ParseFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestResolveNamespaceFallsBackToEnv(t *testing.T) {
	t.Setenv("OKTETO_NAMESPACE", "okteto-ns")

	m, err := Parse([]byte("metadata:\n  name: engine1\n"))
	require.NoError(t, err)

	assert.Equal(t, "okteto-ns", m.ResolveNamespace("OKTETO_NAMESPACE"))
	assert.Equal(t, "", m.ResolveNamespace(""))
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name         string
		manifest     Manifest
		wantErr      bool
		wantWarnings int
	}{
		{
			name: "valid engine",
			manifest: Manifest{
				APIVersion: "litmuschaos.io/v1alpha1",
				Kind:       "ChaosEngine",
				Metadata:   Metadata{Name: "carts-db-chaos", Namespace: "sock-shop"},
				Spec: Spec{
					AppInfo:     AppInfo{AppNS: "sock-shop"},
					Experiments: []ExperimentSpec{{Name: "pod-delete"}},
				},
			},
		},
		{
			name:     "uppercase name",
			manifest: Manifest{Metadata: Metadata{Name: "Carts"}, Spec: Spec{Experiments: []ExperimentSpec{{Name: "pod-delete"}}}},
			wantErr:  true,
		},
		{
			name:         "wrong kind and missing experiment",
			manifest:     Manifest{Kind: "Deployment", Metadata: Metadata{Name: "engine"}, Spec: Spec{Experiments: []ExperimentSpec{{Name: "pod-cpu-hog"}}}},
			wantWarnings: 2,
		},
		{
			name:         "appns mismatch and no experiments",
			manifest:     Manifest{Metadata: Metadata{Name: "engine", Namespace: "a"}, Spec: Spec{AppInfo: AppInfo{AppNS: "b"}}},
			wantWarnings: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			err := v.Validate(&tt.manifest, "pod-delete")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidManifest)
				return
			}
			require.NoError(t, err)
			assert.Len(t, v.Warnings, tt.wantWarnings)
			assert.Equal(t, tt.wantWarnings > 0, v.HasWarnings())
		})
	}
}

func TestParsePhase(t *testing.T) {
	tests := []struct {
		status   string
		want     Phase
		terminal bool
	}{
		{"Completed", PhaseCompleted, true},
		{"Running", PhaseRunning, false},
		{"Failed", PhaseFailed, false},
		{"Stopped", PhaseStopped, false},
		{"Waiting for Job Creation", PhaseWaiting, false},
		{"completed", PhaseUnknown, false},
		{" Completed", PhaseUnknown, false},
		{"", PhaseUnknown, false},
		{"Initializing", PhaseUnknown, false},
	}

	for _, tt := range tests {
		phase := ParsePhase(tt.status)
		assert.Equal(t, tt.want, phase, "status %q", tt.status)
		assert.Equal(t, tt.terminal, phase.IsTerminal(), "status %q", tt.status)
	}

	assert.Equal(t, "Completed", PhaseCompleted.String())
	assert.Equal(t, "Unknown", Phase(99).String())
}

func TestChaosType(t *testing.T) {
	_, err := ParseChaosType("cluster")
	assert.Error(t, err)

	typ, err := ParseChaosType("NODE")
	require.NoError(t, err)
	assert.Equal(t, TypeNode, typ)

	names := []string{"container-kill", "node-cpu-hog", "node-drain", "pod-delete"}
	assert.Equal(t, []string{"container-kill", "pod-delete"}, Filter(names, TypePod))
	assert.Equal(t, []string{"node-cpu-hog", "node-drain"}, Filter(names, TypeNode))
	assert.Equal(t, names, Filter(names, TypeAll))
}
