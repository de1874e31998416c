package inputforge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteTextToken(t *testing.T) {
	dev := &fakeDevice{fastTextOK: true}
	in := newTestInput(dev)

	require.NoError(t, in.Execute(TextToken("hi")))
	assert.Equal(t, []string{"fasttext:hi"}, dev.calls)
}

func TestExecuteKeyToken(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Execute(KeyToken(NamedKey(Tab), Click)))
	assert.Len(t, dev.calls, 2)
}

func TestExecuteButtonToken(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Execute(ButtonToken(Left, Click)))
	assert.Len(t, dev.calls, 2)
}

func TestExecuteButtonTokenIgnoresScrollButtonRelease(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Execute(ButtonToken(ScrollUp, Release)))
	assert.Empty(t, dev.calls)
}

func TestExecuteMoveMouseToken(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Execute(MoveMouseToken(10, 10, Rel)))
	assert.Equal(t, []string{"moverel"}, dev.calls)
}

func TestExecuteScrollToken(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	require.NoError(t, in.Execute(ScrollToken(3, Vertical)))
	assert.Equal(t, []string{"scroll"}, dev.calls)
}

func TestExecuteLocationTokenMatchDoesNotError(t *testing.T) {
	dev := &fakeDevice{locationX: 5, locationY: 7}
	in := newTestInput(dev)

	require.NoError(t, in.Execute(LocationToken(5, 7)))
}

func TestExecuteLocationTokenMismatchLogsButDoesNotError(t *testing.T) {
	dev := &fakeDevice{locationX: 1, locationY: 2}
	in := newTestInput(dev)

	// A mismatch is only logged as a warning; Execute must still succeed.
	require.NoError(t, in.Execute(LocationToken(99, 99)))
}

func TestExecuteLocationTokenPropagatesUnderlyingError(t *testing.T) {
	dev := &fakeDevice{locationErr: assertErr("unsupported backend")}
	in := newTestInput(dev)

	err := in.Execute(LocationToken(0, 0))
	assert.Error(t, err)
}

func TestExecuteMainDisplayTokenMismatchLogsButDoesNotError(t *testing.T) {
	dev := &fakeDevice{mainDisplayW: 1920, mainDisplayH: 1080}
	in := newTestInput(dev)

	require.NoError(t, in.Execute(MainDisplayToken(1024, 768)))
}

func TestExecuteUnknownTokenKindErrors(t *testing.T) {
	dev := &fakeDevice{}
	in := newTestInput(dev)

	err := in.Execute(Token{kind: tokenKind(99)})
	require.Error(t, err)

	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, InvalidInput, ie.Kind)
}
