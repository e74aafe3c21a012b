package sl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

func TestOp(t *testing.T) {
	attr := Op("storage.CreateReminder")
	assert.Equal(t, "op", attr.Key)
	assert.Equal(t, "storage.CreateReminder", attr.Value.String())
}
