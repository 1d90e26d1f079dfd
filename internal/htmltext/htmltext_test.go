package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToText(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		got, err := ToText("")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("strips markup", func(t *testing.T) {
		got, err := ToText(`<html><head><style>p{color:red}</style></head><body><p>Hello</p><p>World</p></body></html>`)
		require.NoError(t, err)
		assert.Equal(t, "Hello\nWorld", got)
	})

	t.Run("drops scripts", func(t *testing.T) {
		got, err := ToText(`<div>Meeting at 9</div><script>alert(1)</script>`)
		require.NoError(t, err)
		assert.Equal(t, "Meeting at 9", got)
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		got, err := ToText("<div>a   b</div><div></div><div></div><div>c</div>")
		require.NoError(t, err)
		assert.Equal(t, "a b\nc", got)
	})
}
