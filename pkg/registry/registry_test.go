package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "check-eligibility", DisplayName: "Check Eligibility", Category: "eligibility", TaskType: "eligibility.verdict.check", Timeout: "30s"},
			{ID: "reconcile-network", DisplayName: "Reconcile Network", Category: "network", TaskType: "network.chain.reconcile", Timeout: "60s", Retries: 2},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validRegistry().Validate())

	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"duplicate id", func(r *ActivityRegistry) { r.Activities[1].ID = "check-eligibility" }, "duplicate activity ID"},
		{"duplicate task type", func(r *ActivityRegistry) { r.Activities[1].TaskType = "eligibility.verdict.check" }, "duplicate task type"},
		{"bad naming", func(r *ActivityRegistry) { r.Activities[0].TaskType = "check-eligibility" }, "domain.subdomain.action"},
		{"missing category", func(r *ActivityRegistry) { r.Activities[0].Category = "" }, "Category"},
		{"unknown status", func(r *ActivityRegistry) { r.Activities[0].ImplementationStatus = "done" }, "implementation status"},
		{"bad timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "thirty" }, "timeout"},
		{"zero timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "0s" }, "positive"},
		{"negative retries", func(r *ActivityRegistry) { r.Activities[1].Retries = -1 }, "retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFind(t *testing.T) {
	reg := validRegistry()

	activity, ok := reg.Find("network.chain.reconcile")
	require.True(t, ok)
	assert.Equal(t, "reconcile-network", activity.ID)

	_, ok = reg.Find("eligibility.application.submit")
	assert.False(t, ok)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	require.NoError(t, validRegistry().Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Activities, 2)
	assert.NotEmpty(t, loaded.LastUpdated)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}

func TestRepositoryRegistryIsValid(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{
		"eligibility.score.evaluate",
		"eligibility.application.submit",
		"eligibility.verdict.check",
		"network.chain.reconcile",
	} {
		activity, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.Equal(t, StatusCompleted, activity.ImplementationStatus)
	}
}
