package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Loved it", Text("  <b>Loved</b> it "))
	assert.Equal(t, "Tom & Jerry", Text("Tom & Jerry"))
	assert.Equal(t, "click", Text(`<a href="javascript:alert(1)">click</a>`))
	assert.Equal(t, "", Text(""))
}

func TestOptionalText(t *testing.T) {
	assert.Nil(t, OptionalText(nil))

	blank := "<p>  </p>"
	assert.Nil(t, OptionalText(&blank))

	v := "<i>Summer</i> reads"
	got := OptionalText(&v)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Summer reads", *got)
	}
}
