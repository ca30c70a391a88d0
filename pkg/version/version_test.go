package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, "dev", GetVersion())
	assert.Equal(t, "dev (build: dev)", GetFullVersion())
	assert.Equal(t, "modbus-admin/dev", UserAgent("modbus-admin"))
}
