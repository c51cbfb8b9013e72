package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-d", "-config"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "separate value",
			args: []string{"-d", "votekeep.db", "-x", "junk"},
			want: []string{"-d", "votekeep.db"},
		},
		{
			name: "equals form",
			args: []string{"-config=cfg.json", "-other=1"},
			want: []string{"-config=cfg.json"},
		},
		{
			name: "flag without value before another flag",
			args: []string{"-d", "-config", "cfg.json"},
			want: []string{"-d", "-config", "cfg.json"},
		},
		{
			name: "nothing allowed",
			args: []string{"-v", "-n", "5"},
			want: []string{},
		},
		{
			name: "empty input",
			args: nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-c", "short.json"}
	assert.Equal(t, "short.json", JsonConfigFlags())

	os.Args = []string{"testbin", "-config", "long.json"}
	assert.Equal(t, "long.json", JsonConfigFlags())

	os.Args = []string{"testbin", "-d", "other"}
	assert.Equal(t, "", JsonConfigFlags())
}
