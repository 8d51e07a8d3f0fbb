package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.NotNil(t, err)
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.NotNil(t, wrappedErr)
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())

	unwrappedErr := Unwrap(wrappedErr)
	assert.Equal(t, origErr, unwrappedErr)

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	// Wrapping nil returns nil
	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())

	assert.True(t, Is(wrappedErr, origErr))
	assert.True(t, Is(deepWrapped, origErr))
}

func TestLockError(t *testing.T) {
	lockErr := NewLockError("cannot acquire", LockHeld, nil)
	assert.Equal(t, "cannot acquire", lockErr.Error())
	assert.Equal(t, LockHeld, lockErr.Kind())
	assert.True(t, IsLockHeld(lockErr))
	assert.False(t, IsLockLost(lockErr))

	origErr := fmt.Errorf("open failed")
	lockErr = NewLockError("cannot renew", LockLost, origErr)
	assert.Equal(t, "cannot renew: open failed", lockErr.Error())
	assert.Equal(t, origErr, Unwrap(lockErr))
	assert.True(t, IsLockLost(lockErr))

	// Predefined errors
	assert.True(t, IsLockHeld(ErrLockHeld))
	assert.True(t, IsLockLost(ErrLockLost))

	// Kind survives wrapping
	assert.True(t, IsLockHeld(Wrap(ErrLockHeld, "startup")))
}

func TestSourceError(t *testing.T) {
	srcErr := NewSourceError("connect failed", "work-imap", SourceConnectFailed, nil)
	assert.Equal(t, "connect failed: work-imap", srcErr.Error())
	assert.Equal(t, "work-imap", srcErr.Source())
	assert.True(t, IsSourceConnectFailed(srcErr))

	origErr := fmt.Errorf("connection refused")
	srcErr = NewSourceError("connect failed", "work-imap", SourceConnectFailed, origErr)
	assert.Equal(t, "connect failed: work-imap: connection refused", srcErr.Error())
	assert.Equal(t, origErr, Unwrap(srcErr))
}

func TestConfigError(t *testing.T) {
	cfgErr := NewConfigError("cannot parse", "/home/u/.config/skiff/config.yaml", InvalidConfig, nil)
	assert.Equal(t, "cannot parse: /home/u/.config/skiff/config.yaml", cfgErr.Error())
	assert.Equal(t, "/home/u/.config/skiff/config.yaml", cfgErr.Path())
	assert.Equal(t, InvalidConfig, cfgErr.Kind())
}

func TestKeymapError(t *testing.T) {
	kmErr := NewKeymapError("duplicate binding", "q", DuplicateBinding)
	assert.Equal(t, `duplicate binding: "q"`, kmErr.Error())
	assert.Equal(t, "q", kmErr.Key())
	assert.Equal(t, DuplicateBinding, kmErr.Kind())
}
