package utils

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestHashFieldsSeparatesFields(t *testing.T) {
	assert.NotEqual(t, HashFields("ab", "c"), HashFields("a", "bc"))
	assert.Equal(t, HashFields("the", "DET"), HashFields("the", "DET"))
	assert.Len(t, HashHex(HashFields("corpus")), 16)
}

func TestRecoverWithError(t *testing.T) {
	run := func() (err error) {
		defer RecoverWithError(&err)
		panic(errors.New("boom"))
	}
	err := run()
	assert.EqualError(t, err, "got panic: boom")
}

func TestRecoverWithErrorKeepsPanicError(t *testing.T) {
	boom := errors.New("boom")
	run := func() (err error) {
		defer RecoverWithError(&err)
		panic(boom)
	}
	assert.True(t, errors.Is(run(), boom))

	runString := func() (err error) {
		defer RecoverWithError(&err)
		panic("index out of range")
	}
	assert.EqualError(t, runString(), "got panic: index out of range")
}
