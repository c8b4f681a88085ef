package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmdRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"serve", "doctor", "init", "stats", "reindex", "compact", "version"}
	for _, name := range want {
		found, _, err := root.Find([]string{name})
		assert.NoError(t, err)
		assert.Equal(t, name, found.Name())
	}
}

func TestNewRootCmdPersistentFlags(t *testing.T) {
	root := NewRootCmd()

	for _, flag := range []string{"profile-cpu", "profile-mem", "profile-trace", "debug"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing persistent flag %q", flag)
	}
}
